// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

// NAV-SAT layout
const (
	navSatHeaderSize = 8
	navSatStride     = 12
)

var (
	satHealthEnum = Enum{Start: 4, Width: 2, Entries: healthEntries}
	orbitSrcEnum  = Enum{Start: 0, Width: 3, Entries: []EnumEntry{
		{0, "none", "no orbit information is available for this SV"},
		{1, "ephemeris", "ephemeris is used"},
		{2, "almanac", "almanac is used"},
		{3, "assistnow-offline", "AssistNow Offline orbit is used"},
		{4, "assistnow-autonomous", "AssistNow Autonomous orbit is used"},
		{5, "other", "other orbit information is used"},
		{6, "other", "other orbit information is used"},
		{7, "other", "other orbit information is used"},
	}}
)

// NavSat is a decoded NAV-SAT satellite information list
type NavSat struct {
	Envelope
	Data NavSatData `json:"data"`
}

// NavSatData holds the NAV-SAT header and per-satellite entries
type NavSatData struct {
	ITOW    uint32          `json:"iTOW"`
	Version uint8           `json:"version"`
	NumSvs  uint8           `json:"numSvs"`
	Sats    []SatelliteInfo `json:"sats"`
}

// Constellation is a resolved GNSS identifier. Name is empty for unknown ids.
type Constellation struct {
	ID   uint8  `json:"raw"`
	Name string `json:"string,omitempty"`
}

// SatelliteInfo is one 12-byte NAV-SAT entry
type SatelliteInfo struct {
	GNSS  Constellation `json:"gnss"`
	SvID  uint8         `json:"svId"`
	Cno   uint8         `json:"cno"`   // carrier to noise ratio [dBHz]
	Elev  int8          `json:"elev"`  // [deg], unknown if outside +/-90
	Azim  int16         `json:"azim"`  // [deg]
	PrRes float64       `json:"prRes"` // pseudorange residual [m]
	Flags SatFlags      `json:"flags"`
}

// SatFlags holds the 32-bit NAV-SAT flags word
type SatFlags struct {
	QualityInd     EnumField `json:"qualityInd"`
	SvUsed         bool      `json:"svUsed"`
	Health         EnumField `json:"health"`
	DiffCorr       bool      `json:"diffCorr"`
	Smoothed       bool      `json:"smoothed"`
	OrbitSource    EnumField `json:"orbitSource"`
	EphAvail       bool      `json:"ephAvail"`
	AlmAvail       bool      `json:"almAvail"`
	AnoAvail       bool      `json:"anoAvail"`
	AopAvail       bool      `json:"aopAvail"`
	SbasCorrUsed   bool      `json:"sbasCorrUsed"`
	RtcmCorrUsed   bool      `json:"rtcmCorrUsed"`
	SlasCorrUsed   bool      `json:"slasCorrUsed"`
	SpartnCorrUsed bool      `json:"spartnCorrUsed"`
	PrCorrUsed     bool      `json:"prCorrUsed"`
	CrCorrUsed     bool      `json:"crCorrUsed"`
	DoCorrUsed     bool      `json:"doCorrUsed"`
}

// DecodeNavSat decodes a NAV-SAT payload (8 + 12*numSvs bytes). A payload
// announcing zero satellites only needs the first 6 header bytes.
func DecodeNavSat(payload []byte, dc DecodeContext) (*NavSat, error) {
	r := newFieldReader(TypeNavSat, payload)
	tables := dc.tables()

	itow := r.u4("iTOW", 0)
	version := r.u1("version", 4)
	numSvs := r.u1("numSvs", 5)
	if numSvs > 0 {
		r.need("sats", navSatHeaderSize, int(numSvs), navSatStride)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	sats := make([]SatelliteInfo, 0, numSvs)
	for i := 0; i < int(numSvs); i++ {
		off := navSatHeaderSize + i*navSatStride
		gnssID := r.u1("gnssId", off)
		name, _ := tables.GnssName(gnssID)

		flags0 := r.u1("flags", off+8)
		flags1 := r.u1("flags", off+9)
		flags2 := r.u1("flags", off+10)

		sats = append(sats, SatelliteInfo{
			GNSS:  Constellation{ID: gnssID, Name: name},
			SvID:  r.u1("svId", off+1),
			Cno:   r.u1("cno", off+2),
			Elev:  r.i1("elev", off+3),
			Azim:  r.i2("azim", off+4),
			PrRes: scale(int64(r.i2("prRes", off+6)), 0.1),
			Flags: SatFlags{
				QualityInd:     qualityIndEnum.Decode(flags0),
				SvUsed:         Bit(flags0, 3),
				Health:         satHealthEnum.Decode(flags0),
				DiffCorr:       Bit(flags0, 6),
				Smoothed:       Bit(flags0, 7),
				OrbitSource:    orbitSrcEnum.Decode(flags1),
				EphAvail:       Bit(flags1, 3),
				AlmAvail:       Bit(flags1, 4),
				AnoAvail:       Bit(flags1, 5),
				AopAvail:       Bit(flags1, 6),
				SbasCorrUsed:   Bit(flags2, 0),
				RtcmCorrUsed:   Bit(flags2, 1),
				SlasCorrUsed:   Bit(flags2, 2),
				SpartnCorrUsed: Bit(flags2, 3),
				PrCorrUsed:     Bit(flags2, 4),
				CrCorrUsed:     Bit(flags2, 5),
				DoCorrUsed:     Bit(flags2, 6),
			},
		})
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	return &NavSat{
		Envelope: newEnvelope(TypeNavSat, itow, dc.Timebase),
		Data: NavSatData{
			ITOW:    itow,
			Version: version,
			NumSvs:  numSvs,
			Sats:    sats,
		},
	}, nil
}

// UsedCount returns the number of satellites flagged as used for navigation
func (d NavSatData) UsedCount() int {
	n := 0
	for _, s := range d.Sats {
		if s.Flags.SvUsed {
			n++
		}
	}
	return n
}
