// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

// ============================================================
// NAV-HPPOSLLH
// ============================================================

// NavHPPosLLH is a decoded NAV-HPPOSLLH high precision geodetic position.
// Coarse and high precision parts are merged exactly in integer fine units.
type NavHPPosLLH struct {
	Envelope
	Data NavHPPosLLHData `json:"data"`
}

// NavHPPosLLHData holds the NAV-HPPOSLLH fields
type NavHPPosLLHData struct {
	Version uint8            `json:"version"`
	Flags   NavHPPosLLHFlags `json:"flags"`
	ITOW    uint32           `json:"iTOW"`
	Lon     Nanodegrees      `json:"lon"`
	Lat     Nanodegrees      `json:"lat"`
	Height  Decimillimeters  `json:"height"`
	HMSL    Decimillimeters  `json:"hMSL"`
	HAcc    Decimillimeters  `json:"hAcc"`
	VAcc    Decimillimeters  `json:"vAcc"`
}

// NavHPPosLLHFlags holds the flags byte (offset 3)
type NavHPPosLLHFlags struct {
	InvalidLlh bool `json:"invalidLlh"`
}

// DecodeNavHPPosLLH decodes a NAV-HPPOSLLH payload (36 bytes)
func DecodeNavHPPosLLH(payload []byte, dc DecodeContext) (*NavHPPosLLH, error) {
	r := newFieldReader(TypeNavHPPosLLH, payload)

	data := NavHPPosLLHData{
		Version: r.u1("version", 0),
		Flags:   NavHPPosLLHFlags{InvalidLlh: Bit(r.u1("flags", 3), 0)},
		ITOW:    r.u4("iTOW", 4),
		Lon:     mergeDegrees(r.i4("lon", 8), r.i1("lonHp", 24)),
		Lat:     mergeDegrees(r.i4("lat", 12), r.i1("latHp", 25)),
		Height:  mergeMillimeters(r.i4("height", 16), r.i1("heightHp", 26)),
		HMSL:    mergeMillimeters(r.i4("hMSL", 20), r.i1("hMSLHp", 27)),
		HAcc:    Decimillimeters(r.u4("hAcc", 28)),
		VAcc:    Decimillimeters(r.u4("vAcc", 32)),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	return &NavHPPosLLH{
		Envelope: newEnvelope(TypeNavHPPosLLH, data.ITOW, dc.Timebase),
		Data:     data,
	}, nil
}

// ============================================================
// NAV-RELPOSNED
// ============================================================

var relPosCarrSolnEnum = Enum{Start: 3, Width: 2, Entries: carrSolnEntries}

// NavRelPosNED is a decoded NAV-RELPOSNED relative position from the
// reference station to the rover, in the NED frame of the reference station.
type NavRelPosNED struct {
	Envelope
	Data NavRelPosNEDData `json:"data"`
}

// NavRelPosNEDData holds the NAV-RELPOSNED fields
type NavRelPosNEDData struct {
	Version       uint8             `json:"version"`
	RefStationID  uint16            `json:"refStationId"`
	ITOW          uint32            `json:"iTOW"`
	RelPosN       Decimillimeters   `json:"relPosN"`
	RelPosE       Decimillimeters   `json:"relPosE"`
	RelPosD       Decimillimeters   `json:"relPosD"`
	RelPosLength  Decimillimeters   `json:"relPosLength"`
	RelPosHeading float64           `json:"relPosHeading"` // [deg]
	AccN          Decimillimeters   `json:"accN"`
	AccE          Decimillimeters   `json:"accE"`
	AccD          Decimillimeters   `json:"accD"`
	AccLength     Decimillimeters   `json:"accLength"`
	AccHeading    float64           `json:"accHeading"` // [deg]
	Flags         NavRelPosNEDFlags `json:"flags"`
}

// NavRelPosNEDFlags holds the flags word (offset 60)
type NavRelPosNEDFlags struct {
	GNSSFixOK          bool      `json:"gnssFixOK"`
	DiffSoln           bool      `json:"diffSoln"`
	RelPosValid        bool      `json:"relPosValid"`
	CarrSoln           EnumField `json:"carrSoln"`
	IsMoving           bool      `json:"isMoving"`
	RefPosMiss         bool      `json:"refPosMiss"`
	RefObsMiss         bool      `json:"refObsMiss"`
	RelPosHeadingValid bool      `json:"relPosHeadingValid"`
	RelPosNormalized   bool      `json:"relPosNormalized"`
}

// DecodeNavRelPosNED decodes a NAV-RELPOSNED payload (64 bytes)
func DecodeNavRelPosNED(payload []byte, dc DecodeContext) (*NavRelPosNED, error) {
	r := newFieldReader(TypeNavRelPosNED, payload)

	data := NavRelPosNEDData{
		Version:       r.u1("version", 0),
		RefStationID:  r.u2("refStationId", 2),
		ITOW:          r.u4("iTOW", 4),
		RelPosN:       mergeCentimeters(r.i4("relPosN", 8), r.i1("relPosHPN", 32)),
		RelPosE:       mergeCentimeters(r.i4("relPosE", 12), r.i1("relPosHPE", 33)),
		RelPosD:       mergeCentimeters(r.i4("relPosD", 16), r.i1("relPosHPD", 34)),
		RelPosLength:  mergeCentimeters(r.i4("relPosLength", 20), r.i1("relPosHPLength", 35)),
		RelPosHeading: scale(int64(r.i4("relPosHeading", 24)), 1e-5),
		AccN:          Decimillimeters(r.u4("accN", 36)),
		AccE:          Decimillimeters(r.u4("accE", 40)),
		AccD:          Decimillimeters(r.u4("accD", 44)),
		AccLength:     Decimillimeters(r.u4("accLength", 48)),
		AccHeading:    scale(int64(r.u4("accHeading", 52)), 1e-5),
		Flags:         decodeRelPosFlags(r.u4("flags", 60)),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	return &NavRelPosNED{
		Envelope: newEnvelope(TypeNavRelPosNED, data.ITOW, dc.Timebase),
		Data:     data,
	}, nil
}

// flags is X4; only the two low bytes are defined
func decodeRelPosFlags(flags uint32) NavRelPosNEDFlags {
	flags0, flags1 := byte(flags), byte(flags>>8)
	return NavRelPosNEDFlags{
		GNSSFixOK:          Bit(flags0, 0),
		DiffSoln:           Bit(flags0, 1),
		RelPosValid:        Bit(flags0, 2),
		CarrSoln:           relPosCarrSolnEnum.Decode(flags0),
		IsMoving:           Bit(flags0, 5),
		RefPosMiss:         Bit(flags0, 6),
		RefObsMiss:         Bit(flags0, 7),
		RelPosHeadingValid: Bit(flags1, 0),
		RelPosNormalized:   Bit(flags1, 1),
	}
}
