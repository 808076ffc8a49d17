// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import "time"

var (
	pvtPSMStateEnum = Enum{Start: 2, Width: 3, Entries: []EnumEntry{
		{0, "not-active", "PSM is not active"},
		{1, "enabled", "Enabled (an intermediate state before Acquisition state)"},
		{2, "acquisition", "Acquisition"},
		{3, "tracking", "Tracking"},
		{4, "power-optimized-tracking", "Power Optimized Tracking"},
		{5, "inactive", "Inactive"},
	}}
	pvtCarrSolnEnum          = Enum{Start: 6, Width: 2, Entries: carrSolnEntries}
	pvtLastCorrectionAgeEnum = Enum{Start: 1, Width: 4, Entries: []EnumEntry{
		{0, "not-available", "Not available"},
		{1, "0-1s", "Age between 0 and 1 second"},
		{2, "1-2s", "Age between 1 (inclusive) and 2 seconds"},
		{3, "2-5s", "Age between 2 (inclusive) and 5 seconds"},
		{4, "5-10s", "Age between 5 (inclusive) and 10 seconds"},
		{5, "10-15s", "Age between 10 (inclusive) and 15 seconds"},
		{6, "15-20s", "Age between 15 (inclusive) and 20 seconds"},
		{7, "20-30s", "Age between 20 (inclusive) and 30 seconds"},
		{8, "30-45s", "Age between 30 (inclusive) and 45 seconds"},
		{9, "45-60s", "Age between 45 (inclusive) and 60 seconds"},
		{10, "60-90s", "Age between 60 (inclusive) and 90 seconds"},
		{11, "90-120s", "Age between 90 (inclusive) and 120 seconds"},
		{12, ">=120s", "Age greater or equal than 120 seconds"},
	}}
)

// NavPVT is a decoded NAV-PVT navigation position velocity time solution
type NavPVT struct {
	Envelope
	Data NavPVTData `json:"data"`
}

// NavPVTData holds the NAV-PVT fields
type NavPVTData struct {
	ITOW    uint32       `json:"iTOW"`
	Year    uint16       `json:"year"`
	Month   uint8        `json:"month"`
	Day     uint8        `json:"day"`
	Hour    uint8        `json:"hour"`
	Minute  uint8        `json:"minute"`
	Second  uint8        `json:"second"`
	Valid   NavPVTValid  `json:"valid"`
	TAcc    uint32       `json:"tAcc"` // [ns]
	Nano    int32        `json:"nano"` // [ns]
	FixType EnumField    `json:"fixType"`
	Flags   NavPVTFlags  `json:"flags"`
	Flags3  NavPVTFlags3 `json:"flags3"`
	NumSV   uint8        `json:"numSV"`
	Lon     float64      `json:"lon"`     // [deg]
	Lat     float64      `json:"lat"`     // [deg]
	Height  int32        `json:"height"`  // [mm]
	HMSL    int32        `json:"hMSL"`    // [mm]
	HAcc    uint32       `json:"hAcc"`    // [mm]
	VAcc    uint32       `json:"vAcc"`    // [mm]
	VelN    int32        `json:"velN"`    // [mm/s]
	VelE    int32        `json:"velE"`    // [mm/s]
	VelD    int32        `json:"velD"`    // [mm/s]
	GSpeed  int32        `json:"gSpeed"`  // [mm/s]
	HeadMot float64      `json:"headMot"` // [deg]
	SAcc    uint32       `json:"sAcc"`    // [mm/s]
	HeadAcc float64      `json:"headAcc"` // [deg]
	PDOP    float64      `json:"pDOP"`
	HeadVeh float64      `json:"headVeh"` // [deg]
	MagDec  float64      `json:"magDec"`  // [deg]
	MagAcc  float64      `json:"magAcc"`  // [deg]
}

// NavPVTValid holds the validity flags (offset 11)
type NavPVTValid struct {
	ValidDate     bool `json:"validDate"`
	ValidTime     bool `json:"validTime"`
	FullyResolved bool `json:"fullyResolved"`
	ValidMag      bool `json:"validMag"`
}

// NavPVTFlags combines flags (offset 21) and flags2 (offset 22)
type NavPVTFlags struct {
	GNSSFixOK     bool      `json:"gnssFixOk"`
	DiffSoln      bool      `json:"diffSoln"`
	PSMState      EnumField `json:"psmState"`
	HeadVehValid  bool      `json:"headVehValid"`
	CarrSoln      EnumField `json:"carrSoln"`
	ConfirmedAvai bool      `json:"confirmedAvai"`
	ConfirmedDate bool      `json:"confirmedDate"`
	ConfirmedTime bool      `json:"confirmedTime"`
}

// NavPVTFlags3 holds flags3 (offset 78)
type NavPVTFlags3 struct {
	InvalidLlh        bool      `json:"invalidLlh"`
	LastCorrectionAge EnumField `json:"lastCorrectionAge"`
}

// DecodeNavPVT decodes a NAV-PVT payload (92 bytes). Fields are read in
// offset order so a short payload reports the first missing field.
func DecodeNavPVT(payload []byte, dc DecodeContext) (*NavPVT, error) {
	r := newFieldReader(TypeNavPVT, payload)

	data := NavPVTData{
		ITOW:    r.u4("iTOW", 0),
		Year:    r.u2("year", 4),
		Month:   r.u1("month", 6),
		Day:     r.u1("day", 7),
		Hour:    r.u1("hour", 8),
		Minute:  r.u1("min", 9),
		Second:  r.u1("sec", 10),
		Valid:   decodePVTValid(r.u1("valid", 11)),
		TAcc:    r.u4("tAcc", 12),
		Nano:    r.i4("nano", 16),
		FixType: fixTypeEnum.Decode(r.u1("fixType", 20)),
		Flags:   decodePVTFlags(r.u1("flags", 21), r.u1("flags2", 22)),
		NumSV:   r.u1("numSV", 23),
		Lon:     scale(int64(r.i4("lon", 24)), 1e-7),
		Lat:     scale(int64(r.i4("lat", 28)), 1e-7),
		Height:  r.i4("height", 32),
		HMSL:    r.i4("hMSL", 36),
		HAcc:    r.u4("hAcc", 40),
		VAcc:    r.u4("vAcc", 44),
		VelN:    r.i4("velN", 48),
		VelE:    r.i4("velE", 52),
		VelD:    r.i4("velD", 56),
		GSpeed:  r.i4("gSpeed", 60),
		HeadMot: scale(int64(r.i4("headMot", 64)), 1e-5),
		SAcc:    r.u4("sAcc", 68),
		HeadAcc: scale(int64(r.u4("headAcc", 72)), 1e-5),
		PDOP:    scale(int64(r.u2("pDOP", 76)), 0.01),
		Flags3:  decodePVTFlags3(r.u1("flags3", 78)),
		HeadVeh: scale(int64(r.i4("headVeh", 84)), 1e-5),
		MagDec:  scale(int64(r.i2("magDec", 88)), 1e-2),
		MagAcc:  scale(int64(r.u2("magAcc", 90)), 1e-2),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	return &NavPVT{
		Envelope: newEnvelope(TypeNavPVT, data.ITOW, dc.Timebase),
		Data:     data,
	}, nil
}

func decodePVTValid(valid byte) NavPVTValid {
	return NavPVTValid{
		ValidDate:     Bit(valid, 0),
		ValidTime:     Bit(valid, 1),
		FullyResolved: Bit(valid, 2),
		ValidMag:      Bit(valid, 3),
	}
}

func decodePVTFlags(flags, flags2 byte) NavPVTFlags {
	return NavPVTFlags{
		GNSSFixOK:     Bit(flags, 0),
		DiffSoln:      Bit(flags, 1),
		PSMState:      pvtPSMStateEnum.Decode(flags),
		HeadVehValid:  Bit(flags, 5),
		CarrSoln:      pvtCarrSolnEnum.Decode(flags),
		ConfirmedAvai: Bit(flags2, 5),
		ConfirmedDate: Bit(flags2, 6),
		ConfirmedTime: Bit(flags2, 7),
	}
}

func decodePVTFlags3(flags3 byte) NavPVTFlags3 {
	return NavPVTFlags3{
		InvalidLlh:        Bit(flags3, 0),
		LastCorrectionAge: pvtLastCorrectionAgeEnum.Decode(flags3),
	}
}

// UTC returns the receiver's UTC date and time. ok is false unless both the
// date and time of day are flagged valid.
func (d NavPVTData) UTC() (t time.Time, ok bool) {
	if !d.Valid.ValidDate || !d.Valid.ValidTime {
		return time.Time{}, false
	}
	t = time.Date(int(d.Year), time.Month(d.Month), int(d.Day),
		int(d.Hour), int(d.Minute), int(d.Second), 0, time.UTC)
	return t.Add(time.Duration(d.Nano)), true
}

// HasFix reports whether the receiver flags a valid 2D or 3D fix
func (d NavPVTData) HasFix() bool {
	return d.Flags.GNSSFixOK && !d.Flags3.InvalidLlh &&
		(d.FixType.Value == 0x02 || d.FixType.Value == 0x03 || d.FixType.Value == 0x04)
}
