// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

// NAV-SIG layout
const (
	navSigHeaderSize = 8
	navSigStride     = 16
)

var (
	// qualityInd is a whole byte here, unlike the 3-bit NAV-SAT field
	sigQualityEnum = Enum{Start: 0, Width: 8, Entries: qualityIndEnum.Entries}
	sigHealthEnum  = Enum{Start: 0, Width: 2, Entries: healthEntries}
	corrSourceEnum = Enum{Start: 0, Width: 8, Entries: []EnumEntry{
		{0, "none", "no corrections"},
		{1, "sbas", "SBAS corrections"},
		{2, "beidou", "BeiDou corrections"},
		{3, "rtcm2", "RTCM2 corrections"},
		{4, "rtcm3-osr", "RTCM3 OSR corrections"},
		{5, "rtcm3-ssr", "RTCM3 SSR corrections"},
		{6, "qzss-slas", "QZSS SLAS corrections"},
		{7, "spartn", "SPARTN corrections"},
		{8, "clas", "CLAS corrections"},
	}}
	ionoModelEnum = Enum{Start: 0, Width: 8, Entries: []EnumEntry{
		{0, "none", "no model"},
		{1, "klobuchar-gps", "Klobuchar model transmitted by GPS"},
		{2, "sbas", "SBAS model"},
		{3, "klobuchar-beidou", "Klobuchar model transmitted by BeiDou"},
		{8, "dual-frequency", "Iono delay derived from dual frequency observations"},
	}}
)

// NavSig is a decoded NAV-SIG signal information list
type NavSig struct {
	Envelope
	Data NavSigData `json:"data"`
}

// NavSigData holds the NAV-SIG header and per-signal entries
type NavSigData struct {
	ITOW    uint32       `json:"iTOW"`
	Version uint8        `json:"version"`
	NumSigs uint8        `json:"numSigs"`
	Sigs    []SignalInfo `json:"sigs"`
}

// Signal is a resolved signal identifier. Name is empty for unknown ids.
type Signal struct {
	ID   uint8  `json:"raw"`
	Name string `json:"string,omitempty"`
}

// SignalInfo is one 16-byte NAV-SIG entry
type SignalInfo struct {
	GNSS       Constellation `json:"gnss"`
	SvID       uint8         `json:"svId"`
	Sig        Signal        `json:"sig"`
	FreqID     uint8         `json:"freqId"` // GLONASS frequency slot + 7
	PrRes      float64       `json:"prRes"`  // [m]
	Cno        uint8         `json:"cno"`    // [dBHz]
	QualityInd EnumField     `json:"qualityInd"`
	CorrSource EnumField     `json:"corrSource"`
	IonoModel  EnumField     `json:"ionoModel"`
	Flags      SigFlags      `json:"sigFlags"`
}

// SigFlags holds the 16-bit NAV-SIG sigFlags word
type SigFlags struct {
	Health     EnumField `json:"health"`
	PrSmoothed bool      `json:"prSmoothed"`
	PrUsed     bool      `json:"prUsed"`
	CrUsed     bool      `json:"crUsed"`
	DoUsed     bool      `json:"doUsed"`
	PrCorrUsed bool      `json:"prCorrUsed"`
	CrCorrUsed bool      `json:"crCorrUsed"`
	DoCorrUsed bool      `json:"doCorrUsed"`
}

// DecodeNavSig decodes a NAV-SIG payload (8 + 16*numSigs bytes). A payload
// announcing zero signals only needs the first 6 header bytes.
func DecodeNavSig(payload []byte, dc DecodeContext) (*NavSig, error) {
	r := newFieldReader(TypeNavSig, payload)
	tables := dc.tables()

	itow := r.u4("iTOW", 0)
	version := r.u1("version", 4)
	numSigs := r.u1("numSigs", 5)
	if numSigs > 0 {
		r.need("sigs", navSigHeaderSize, int(numSigs), navSigStride)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	sigs := make([]SignalInfo, 0, numSigs)
	for i := 0; i < int(numSigs); i++ {
		off := navSigHeaderSize + i*navSigStride
		gnssID := r.u1("gnssId", off)
		sigID := r.u1("sigId", off+2)
		gnssName, _ := tables.GnssName(gnssID)
		sigName, _ := tables.SignalName(gnssID, sigID)

		flags0 := r.u1("sigFlags", off+10)
		flags1 := r.u1("sigFlags", off+11)

		sigs = append(sigs, SignalInfo{
			GNSS:       Constellation{ID: gnssID, Name: gnssName},
			SvID:       r.u1("svId", off+1),
			Sig:        Signal{ID: sigID, Name: sigName},
			FreqID:     r.u1("freqId", off+3),
			PrRes:      scale(int64(r.i2("prRes", off+4)), 0.1),
			Cno:        r.u1("cno", off+6),
			QualityInd: sigQualityEnum.Decode(r.u1("qualityInd", off+7)),
			CorrSource: corrSourceEnum.Decode(r.u1("corrSource", off+8)),
			IonoModel:  ionoModelEnum.Decode(r.u1("ionoModel", off+9)),
			Flags: SigFlags{
				Health:     sigHealthEnum.Decode(flags0),
				PrSmoothed: Bit(flags0, 2),
				PrUsed:     Bit(flags0, 3),
				CrUsed:     Bit(flags0, 4),
				DoUsed:     Bit(flags0, 5),
				PrCorrUsed: Bit(flags0, 6),
				CrCorrUsed: Bit(flags0, 7),
				DoCorrUsed: Bit(flags1, 0),
			},
		})
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	return &NavSig{
		Envelope: newEnvelope(TypeNavSig, itow, dc.Timebase),
		Data: NavSigData{
			ITOW:    itow,
			Version: version,
			NumSigs: numSigs,
			Sigs:    sigs,
		},
	}, nil
}

// UsedCount returns the number of signals whose pseudorange is used
func (d NavSigData) UsedCount() int {
	n := 0
	for _, s := range d.Sigs {
		if s.Flags.PrUsed {
			n++
		}
	}
	return n
}
