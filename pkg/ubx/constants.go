// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package ubx decodes the u-blox UBX binary protocol.
//
// The package is split the same way a receiver stream is processed: a Framer
// turns raw bytes into checksum-verified Frames, and a Dispatcher routes each
// Frame to the decoder registered for its class/id pair. Decoders are pure
// functions of the payload (plus the Timebase clock used for iTOW conversion)
// and return typed records such as *NavPVT or *MonRF.
package ubx

// Protocol framing bytes
const (
	SyncChar1 = 0xB5
	SyncChar2 = 0x62
)

// Frame size limits
const (
	HeaderSize     = 6 // sync1 sync2 class id len(2)
	ChecksumSize   = 2
	MaxPayloadSize = 8192
	MaxFrameSize   = HeaderSize + MaxPayloadSize + ChecksumSize
)

// Message classes
const (
	ClassNAV = 0x01
	ClassRXM = 0x02
	ClassINF = 0x04
	ClassACK = 0x05
	ClassCFG = 0x06
	ClassUPD = 0x09
	ClassMON = 0x0A
	ClassAID = 0x0B
	ClassTIM = 0x0D
	ClassESF = 0x10
	ClassMGA = 0x13
	ClassLOG = 0x21
	ClassSEC = 0x27
	ClassHNR = 0x28
)

// Message IDs with a registered decoder
const (
	IDNavPosLLH    = 0x02
	IDNavStatus    = 0x03
	IDNavPVT       = 0x07
	IDNavVelNED    = 0x12
	IDNavHPPosLLH  = 0x14
	IDNavSat       = 0x35
	IDNavRelPosNED = 0x3C
	IDNavSig       = 0x43
	IDNavEOE       = 0x61

	IDMonVer = 0x04
	IDMonRF  = 0x38
)

// Decoded message type names
const (
	TypeNavStatus    = "NAV-STATUS"
	TypeNavPosLLH    = "NAV-POSLLH"
	TypeNavVelNED    = "NAV-VELNED"
	TypeNavSat       = "NAV-SAT"
	TypeNavSig       = "NAV-SIG"
	TypeNavPVT       = "NAV-PVT"
	TypeNavHPPosLLH  = "NAV-HPPOSLLH"
	TypeNavRelPosNED = "NAV-RELPOSNED"
	TypeNavEOE       = "NAV-EOE"
	TypeMonVer       = "MON-VER"
	TypeMonRF        = "MON-RF"
)

// Framer states (internal)
const (
	stateSync1 = iota
	stateSync2
	stateClass
	stateID
	stateLength1
	stateLength2
	statePayload
	stateChecksumA
	stateChecksumB
)
