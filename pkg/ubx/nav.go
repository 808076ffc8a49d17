// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

// ============================================================
// NAV-STATUS
// ============================================================

var (
	statusPSMStateEnum = Enum{Start: 0, Width: 2, Entries: []EnumEntry{
		{0, "acquisition", "ACQUISITION"},
		{1, "tracking", "TRACKING"},
		{2, "power-optimized-tracking", "POWER OPTIMIZED TRACKING"},
		{3, "inactive", "INACTIVE"},
	}}
	statusSpoofDetEnum = Enum{Start: 3, Width: 2, Entries: []EnumEntry{
		{0, "unknown", "Unknown or deactivated"},
		{1, "no-spoofing", "No spoofing indicated"},
		{2, "spoofing", "Spoofing indicated"},
		{3, "multiple-spoofing", "Multiple spoofing indications"},
	}}
	statusCarrSolnEnum = Enum{Start: 6, Width: 2, Entries: carrSolnEntries}
	statusMapMatchEnum = Enum{Start: 6, Width: 2, Entries: []EnumEntry{
		{0, "none", "no map matching"},
		{1, "valid-unused", "map matching valid but not used"},
		{2, "valid-used", "map matching valid and used"},
		{3, "dead-reckoning", "map matching valid and used, dead reckoning enabled"},
	}}
)

// NavStatus is a decoded NAV-STATUS receiver navigation status
type NavStatus struct {
	Envelope
	Data NavStatusData `json:"data"`
}

// NavStatusData holds the NAV-STATUS fields
type NavStatusData struct {
	ITOW    uint32           `json:"iTOW"`
	GPSFix  EnumField        `json:"gpsFix"`
	Flags   NavStatusFlags   `json:"flags"`
	FixStat NavStatusFixStat `json:"fixStat"`
	TTFF    uint32           `json:"ttff"` // time to first fix [ms]
	MSSS    uint32           `json:"msss"` // milliseconds since startup [ms]
}

// NavStatusFlags combines flags (offset 5) and flags2 (offset 7)
type NavStatusFlags struct {
	GPSFixOK      bool      `json:"gpsFixOk"`
	DiffSoln      bool      `json:"diffSoln"`
	WknSet        bool      `json:"wknSet"`
	TowSet        bool      `json:"towSet"`
	PSMState      EnumField `json:"psmState"`
	SpoofDetState EnumField `json:"spoofDetState"`
	CarrSoln      EnumField `json:"carrSoln"`
}

// NavStatusFixStat holds the fixStat byte (offset 6)
type NavStatusFixStat struct {
	DiffCorr      bool      `json:"diffCorr"`
	CarrSolnValid bool      `json:"carrSolnValid"`
	MapMatching   EnumField `json:"mapMatching"`
}

// DecodeNavStatus decodes a NAV-STATUS payload (16 bytes)
func DecodeNavStatus(payload []byte, dc DecodeContext) (*NavStatus, error) {
	r := newFieldReader(TypeNavStatus, payload)

	itow := r.u4("iTOW", 0)
	gpsFix := r.u1("gpsFix", 4)
	flags := r.u1("flags", 5)
	fixStat := r.u1("fixStat", 6)
	flags2 := r.u1("flags2", 7)
	ttff := r.u4("ttff", 8)
	msss := r.u4("msss", 12)
	if err := r.Err(); err != nil {
		return nil, err
	}

	return &NavStatus{
		Envelope: newEnvelope(TypeNavStatus, itow, dc.Timebase),
		Data: NavStatusData{
			ITOW:   itow,
			GPSFix: fixTypeEnum.Decode(gpsFix),
			Flags: NavStatusFlags{
				GPSFixOK:      Bit(flags, 0),
				DiffSoln:      Bit(flags, 1),
				WknSet:        Bit(flags, 2),
				TowSet:        Bit(flags, 3),
				PSMState:      statusPSMStateEnum.Decode(flags2),
				SpoofDetState: statusSpoofDetEnum.Decode(flags2),
				CarrSoln:      statusCarrSolnEnum.Decode(flags2),
			},
			FixStat: NavStatusFixStat{
				DiffCorr:      Bit(fixStat, 0),
				CarrSolnValid: Bit(fixStat, 1),
				MapMatching:   statusMapMatchEnum.Decode(fixStat),
			},
			TTFF: ttff,
			MSSS: msss,
		},
	}, nil
}

// ============================================================
// NAV-POSLLH
// ============================================================

// NavPosLLH is a decoded NAV-POSLLH geodetic position
type NavPosLLH struct {
	Envelope
	Data NavPosLLHData `json:"data"`
}

// NavPosLLHData holds the NAV-POSLLH fields
type NavPosLLHData struct {
	ITOW   uint32  `json:"iTOW"`
	Lon    float64 `json:"lon"`    // [deg]
	Lat    float64 `json:"lat"`    // [deg]
	Height int32   `json:"height"` // above ellipsoid [mm]
	HMSL   int32   `json:"hMSL"`   // above mean sea level [mm]
	HAcc   uint32  `json:"hAcc"`   // [mm]
	VAcc   uint32  `json:"vAcc"`   // [mm]
}

// DecodeNavPosLLH decodes a NAV-POSLLH payload (28 bytes)
func DecodeNavPosLLH(payload []byte, dc DecodeContext) (*NavPosLLH, error) {
	r := newFieldReader(TypeNavPosLLH, payload)

	data := NavPosLLHData{
		ITOW:   r.u4("iTOW", 0),
		Lon:    scale(int64(r.i4("lon", 4)), 1e-7),
		Lat:    scale(int64(r.i4("lat", 8)), 1e-7),
		Height: r.i4("height", 12),
		HMSL:   r.i4("hMSL", 16),
		HAcc:   r.u4("hAcc", 20),
		VAcc:   r.u4("vAcc", 24),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	return &NavPosLLH{
		Envelope: newEnvelope(TypeNavPosLLH, data.ITOW, dc.Timebase),
		Data:     data,
	}, nil
}

// ============================================================
// NAV-VELNED
// ============================================================

// NavVelNED is a decoded NAV-VELNED velocity solution in the NED frame
type NavVelNED struct {
	Envelope
	Data NavVelNEDData `json:"data"`
}

// NavVelNEDData holds the NAV-VELNED fields
type NavVelNEDData struct {
	ITOW    uint32  `json:"iTOW"`
	VelN    int32   `json:"velN"`    // [cm/s]
	VelE    int32   `json:"velE"`    // [cm/s]
	VelD    int32   `json:"velD"`    // [cm/s]
	Speed   uint32  `json:"speed"`   // 3-D [cm/s]
	GSpeed  uint32  `json:"gSpeed"`  // ground [cm/s]
	Heading float64 `json:"heading"` // [deg]
	SAcc    uint32  `json:"sAcc"`    // [cm/s]
	CAcc    float64 `json:"cAcc"`    // [deg]
}

// DecodeNavVelNED decodes a NAV-VELNED payload (36 bytes)
func DecodeNavVelNED(payload []byte, dc DecodeContext) (*NavVelNED, error) {
	r := newFieldReader(TypeNavVelNED, payload)

	data := NavVelNEDData{
		ITOW:    r.u4("iTOW", 0),
		VelN:    r.i4("velN", 4),
		VelE:    r.i4("velE", 8),
		VelD:    r.i4("velD", 12),
		Speed:   r.u4("speed", 16),
		GSpeed:  r.u4("gSpeed", 20),
		Heading: scale(int64(r.i4("heading", 24)), 1e-5),
		SAcc:    r.u4("sAcc", 28),
		CAcc:    scale(int64(r.i4("cAcc", 32)), 1e-5),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	return &NavVelNED{
		Envelope: newEnvelope(TypeNavVelNED, data.ITOW, dc.Timebase),
		Data:     data,
	}, nil
}

// ============================================================
// NAV-EOE
// ============================================================

// NavEOE marks the end of a navigation epoch
type NavEOE struct {
	Envelope
	Data NavEOEData `json:"data"`
}

// NavEOEData holds the NAV-EOE fields
type NavEOEData struct {
	ITOW uint32 `json:"iTOW"`
}

// DecodeNavEOE decodes a NAV-EOE payload (4 bytes)
func DecodeNavEOE(payload []byte, dc DecodeContext) (*NavEOE, error) {
	r := newFieldReader(TypeNavEOE, payload)
	itow := r.u4("iTOW", 0)
	if err := r.Err(); err != nil {
		return nil, err
	}
	return &NavEOE{
		Envelope: newEnvelope(TypeNavEOE, itow, dc.Timebase),
		Data:     NavEOEData{ITOW: itow},
	}, nil
}
