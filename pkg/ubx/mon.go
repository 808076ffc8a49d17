// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import "bytes"

// MON-VER layout
const (
	monVerSwSize  = 30
	monVerHwSize  = 10
	monVerExtSize = 30
	monVerMinSize = monVerSwSize + monVerHwSize
)

// MON-RF layout
const (
	monRFHeaderSize = 4
	monRFStride     = 24
)

// MonRFVersion is the only MON-RF message version with a known block layout
const MonRFVersion = 0

var (
	rfJammingStateEnum = Enum{Start: 0, Width: 2, Entries: []EnumEntry{
		{0, "unknown", "unknown or feature disabled"},
		{1, "ok", "no significant jamming"},
		{2, "warning", "interference visible but fix OK"},
		{3, "critical", "interference visible and no fix"},
	}}
	rfAntStatusEnum = Enum{Start: 0, Width: 8, Entries: []EnumEntry{
		{0x00, "init", "INIT"},
		{0x01, "dont-know", "DONTKNOW"},
		{0x02, "ok", "OK"},
		{0x03, "short", "SHORT"},
		{0x04, "open", "OPEN"},
	}}
	// antPower has no entry for 3
	rfAntPowerEnum = Enum{Start: 0, Width: 8, Entries: []EnumEntry{
		{0x00, "off", "OFF"},
		{0x01, "on", "ON"},
		{0x02, "dont-know", "DONTKNOW"},
	}}
)

// ============================================================
// MON-VER
// ============================================================

// MonVer is a decoded MON-VER receiver and software version
type MonVer struct {
	Type string     `json:"type"`
	Data MonVerData `json:"data"`
}

// MessageType implements Message
func (m *MonVer) MessageType() string {
	return m.Type
}

// MonVerData holds the MON-VER strings with trailing NULs removed
type MonVerData struct {
	SwVersion  string   `json:"swVersion"`
	HwVersion  string   `json:"hwVersion"`
	Extensions []string `json:"extensions"`
}

// DecodeMonVer decodes a MON-VER payload (40 + 30*N bytes). A trailing
// partial extension is decoded from the bytes that are present.
func DecodeMonVer(payload []byte, dc DecodeContext) (*MonVer, error) {
	r := newFieldReader(TypeMonVer, payload)
	if !r.check("hwVersion", monVerSwSize, monVerHwSize) {
		return nil, r.Err()
	}

	data := MonVerData{
		SwVersion:  trimNul(r.bytes("swVersion", 0, monVerSwSize)),
		HwVersion:  trimNul(r.bytes("hwVersion", monVerSwSize, monVerHwSize)),
		Extensions: []string{},
	}
	for off := monVerMinSize; off < len(payload); off += monVerExtSize {
		data.Extensions = append(data.Extensions, trimNul(r.bytes("extension", off, monVerExtSize)))
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	return &MonVer{Type: TypeMonVer, Data: data}, nil
}

// Extension returns the value of a "KEY=value" extension, e.g. "PROTVER"
func (d MonVerData) Extension(key string) (string, bool) {
	prefix := key + "="
	for _, ext := range d.Extensions {
		if len(ext) >= len(prefix) && ext[:len(prefix)] == prefix {
			return ext[len(prefix):], true
		}
	}
	return "", false
}

func trimNul(b []byte) string {
	return string(bytes.TrimRight(b, "\x00"))
}

// ============================================================
// MON-RF
// ============================================================

// MonRF is a decoded MON-RF RF information report
type MonRF struct {
	Type string    `json:"type"`
	Data MonRFData `json:"data"`
}

// MessageType implements Message
func (m *MonRF) MessageType() string {
	return m.Type
}

// MonRFData holds the MON-RF header and RF blocks. Blocks is empty for
// message versions other than MonRFVersion.
type MonRFData struct {
	Version uint8     `json:"version"`
	NBlocks uint8     `json:"nBlocks"`
	Blocks  []RFBlock `json:"blocks"`
}

// RFBlock is one 24-byte MON-RF block
type RFBlock struct {
	BlockID      uint8     `json:"blockId"`
	JammingState EnumField `json:"jammingState"`
	AntStatus    EnumField `json:"antStatus"`
	AntPower     EnumField `json:"antPower"`
	PostStatus   uint32    `json:"postStatus"`
	NoisePerMS   uint16    `json:"noisePerMS"`
	AgcCnt       uint16    `json:"agcCnt"` // 0..8191
	JamInd       uint8     `json:"jamInd"` // CW jamming indicator, 0..255
	OfsI         int8      `json:"ofsI"`
	MagI         uint8     `json:"magI"`
	OfsQ         int8      `json:"ofsQ"`
	MagQ         uint8     `json:"magQ"`
}

// DecodeMonRF decodes a MON-RF payload (4 + 24*nBlocks bytes)
func DecodeMonRF(payload []byte, dc DecodeContext) (*MonRF, error) {
	r := newFieldReader(TypeMonRF, payload)

	data := MonRFData{
		Version: r.u1("version", 0),
		NBlocks: r.u1("nBlocks", 1),
		Blocks:  []RFBlock{},
	}
	r.check("reserved", 2, 2)
	if err := r.Err(); err != nil {
		return nil, err
	}
	if data.Version != MonRFVersion {
		return &MonRF{Type: TypeMonRF, Data: data}, nil
	}

	if data.NBlocks > 0 {
		r.need("blocks", monRFHeaderSize, int(data.NBlocks), monRFStride)
	}
	for i := 0; i < int(data.NBlocks) && r.Err() == nil; i++ {
		off := monRFHeaderSize + i*monRFStride
		data.Blocks = append(data.Blocks, RFBlock{
			BlockID:      r.u1("blockId", off),
			JammingState: rfJammingStateEnum.Decode(r.u1("flags", off+1)),
			AntStatus:    rfAntStatusEnum.Decode(r.u1("antStatus", off+2)),
			AntPower:     rfAntPowerEnum.Decode(r.u1("antPower", off+3)),
			PostStatus:   r.u4("postStatus", off+4),
			NoisePerMS:   r.u2("noisePerMS", off+12),
			AgcCnt:       r.u2("agcCnt", off+14),
			JamInd:       r.u1("jamInd", off+16),
			OfsI:         r.i1("ofsI", off+17),
			MagI:         r.u1("magI", off+18),
			OfsQ:         r.i1("ofsQ", off+19),
			MagQ:         r.u1("magQ", off+20),
		})
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	return &MonRF{Type: TypeMonRF, Data: data}, nil
}
