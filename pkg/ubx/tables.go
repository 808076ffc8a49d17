// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"fmt"
	"sort"
)

// MessageKey identifies a message type by its class and id bytes.
type MessageKey struct {
	Class uint8
	ID    uint8
}

// Key builds a MessageKey from class and id.
func Key(class, id uint8) MessageKey {
	return MessageKey{Class: class, ID: id}
}

// String renders the key as "class_id" in decimal, e.g. "1_7" for NAV-PVT.
func (k MessageKey) String() string {
	return fmt.Sprintf("%d_%d", k.Class, k.ID)
}

// GNSS identifiers (gnssId)
const (
	GnssGPS     = 0
	GnssSBAS    = 1
	GnssGalileo = 2
	GnssBeiDou  = 3
	GnssIMES    = 4
	GnssQZSS    = 5
	GnssGLONASS = 6
	GnssNavIC   = 7
)

// Tables holds the identifier tables used during decoding: the message
// registry and the GNSS constellation / signal names. A Tables value must not
// be modified once it is handed to a Dispatcher.
type Tables struct {
	messages     map[string]MessageKey
	messageByKey map[MessageKey]string
	gnss         map[uint8]string
	signals      map[uint8]map[uint8]string
}

var defaultMessages = map[string]MessageKey{
	// NAV
	"NAV-POSECEF":   {ClassNAV, 0x01},
	"NAV-POSLLH":    {ClassNAV, IDNavPosLLH},
	"NAV-STATUS":    {ClassNAV, IDNavStatus},
	"NAV-DOP":       {ClassNAV, 0x04},
	"NAV-ATT":       {ClassNAV, 0x05},
	"NAV-SOL":       {ClassNAV, 0x06},
	"NAV-PVT":       {ClassNAV, IDNavPVT},
	"NAV-ODO":       {ClassNAV, 0x09},
	"NAV-RESETODO":  {ClassNAV, 0x10},
	"NAV-VELECEF":   {ClassNAV, 0x11},
	"NAV-VELNED":    {ClassNAV, IDNavVelNED},
	"NAV-HPPOSECEF": {ClassNAV, 0x13},
	"NAV-HPPOSLLH":  {ClassNAV, IDNavHPPosLLH},
	"NAV-TIMEGPS":   {ClassNAV, 0x20},
	"NAV-TIMEUTC":   {ClassNAV, 0x21},
	"NAV-CLOCK":     {ClassNAV, 0x22},
	"NAV-TIMEGLO":   {ClassNAV, 0x23},
	"NAV-TIMEBDS":   {ClassNAV, 0x24},
	"NAV-TIMEGAL":   {ClassNAV, 0x25},
	"NAV-TIMELS":    {ClassNAV, 0x26},
	"NAV-SVINFO":    {ClassNAV, 0x30},
	"NAV-SBAS":      {ClassNAV, 0x32},
	"NAV-ORB":       {ClassNAV, 0x34},
	"NAV-SAT":       {ClassNAV, IDNavSat},
	"NAV-GEOFENCE":  {ClassNAV, 0x39},
	"NAV-SVIN":      {ClassNAV, 0x3B},
	"NAV-RELPOSNED": {ClassNAV, IDNavRelPosNED},
	"NAV-SIG":       {ClassNAV, IDNavSig},
	"NAV-EOE":       {ClassNAV, IDNavEOE},

	// RXM
	"RXM-SFRBX": {ClassRXM, 0x13},
	"RXM-RAWX":  {ClassRXM, 0x15},
	"RXM-RTCM":  {ClassRXM, 0x32},

	// INF
	"INF-ERROR":   {ClassINF, 0x00},
	"INF-WARNING": {ClassINF, 0x01},
	"INF-NOTICE":  {ClassINF, 0x02},
	"INF-TEST":    {ClassINF, 0x03},
	"INF-DEBUG":   {ClassINF, 0x04},

	// ACK
	"ACK-NAK": {ClassACK, 0x00},
	"ACK-ACK": {ClassACK, 0x01},

	// CFG
	"CFG-PRT":    {ClassCFG, 0x00},
	"CFG-MSG":    {ClassCFG, 0x01},
	"CFG-RST":    {ClassCFG, 0x04},
	"CFG-RATE":   {ClassCFG, 0x08},
	"CFG-CFG":    {ClassCFG, 0x09},
	"CFG-NAV5":   {ClassCFG, 0x24},
	"CFG-TP5":    {ClassCFG, 0x31},
	"CFG-GNSS":   {ClassCFG, 0x3E},
	"CFG-VALSET": {ClassCFG, 0x8A},
	"CFG-VALGET": {ClassCFG, 0x8B},
	"CFG-VALDEL": {ClassCFG, 0x8C},

	// MON
	"MON-IO":    {ClassMON, 0x02},
	"MON-VER":   {ClassMON, IDMonVer},
	"MON-MSGPP": {ClassMON, 0x06},
	"MON-RXBUF": {ClassMON, 0x07},
	"MON-TXBUF": {ClassMON, 0x08},
	"MON-HW":    {ClassMON, 0x09},
	"MON-HW2":   {ClassMON, 0x0B},
	"MON-RXR":   {ClassMON, 0x21},
	"MON-GNSS":  {ClassMON, 0x28},
	"MON-SPAN":  {ClassMON, 0x31},
	"MON-COMMS": {ClassMON, 0x36},
	"MON-RF":    {ClassMON, IDMonRF},

	// TIM
	"TIM-TP":   {ClassTIM, 0x01},
	"TIM-TM2":  {ClassTIM, 0x03},
	"TIM-SVIN": {ClassTIM, 0x04},

	// ESF
	"ESF-MEAS":   {ClassESF, 0x02},
	"ESF-RAW":    {ClassESF, 0x03},
	"ESF-STATUS": {ClassESF, 0x10},
	"ESF-INS":    {ClassESF, 0x15},

	// SEC
	"SEC-UNIQID": {ClassSEC, 0x03},
}

var defaultGnss = map[uint8]string{
	GnssGPS:     "GPS",
	GnssSBAS:    "SBAS",
	GnssGalileo: "Galileo",
	GnssBeiDou:  "BeiDou",
	GnssIMES:    "IMES",
	GnssQZSS:    "QZSS",
	GnssGLONASS: "GLONASS",
	GnssNavIC:   "NavIC",
}

var defaultSignals = map[uint8]map[uint8]string{
	GnssGPS: {
		0: "GPS L1C/A",
		3: "GPS L2 CL",
		4: "GPS L2 CM",
		6: "GPS L5 I",
		7: "GPS L5 Q",
	},
	GnssSBAS: {
		0: "SBAS L1C/A",
	},
	GnssGalileo: {
		0:  "Galileo E1 C",
		1:  "Galileo E1 B",
		3:  "Galileo E5 aI",
		4:  "Galileo E5 aQ",
		5:  "Galileo E5 bI",
		6:  "Galileo E5 bQ",
		8:  "Galileo E6 B",
		9:  "Galileo E6 C",
		10: "Galileo E6 A",
	},
	GnssBeiDou: {
		0: "BeiDou B1I D1",
		1: "BeiDou B1I D2",
		2: "BeiDou B2I D1",
		3: "BeiDou B2I D2",
		5: "BeiDou B1 Cp",
		6: "BeiDou B1 Cd",
		7: "BeiDou B2 ap",
		8: "BeiDou B2 ad",
	},
	GnssQZSS: {
		0: "QZSS L1C/A",
		1: "QZSS L1S",
		4: "QZSS L2 CM",
		5: "QZSS L2 CL",
		8: "QZSS L5 I",
		9: "QZSS L5 Q",
	},
	GnssGLONASS: {
		0: "GLONASS L1 OF",
		2: "GLONASS L2 OF",
	},
	GnssNavIC: {
		0: "NavIC L5 A",
	},
}

var defaultTables = buildTables(defaultMessages, defaultGnss, defaultSignals)

// DefaultTables returns the built-in identifier tables. The returned value is
// shared and must be treated as read-only.
func DefaultTables() *Tables {
	return defaultTables
}

// NewTables builds identifier tables from the defaults plus extra message
// names. Extra entries override defaults with the same name; a key claimed by
// two names is rejected.
func NewTables(extraMessages map[string]MessageKey) (*Tables, error) {
	messages := make(map[string]MessageKey, len(defaultMessages)+len(extraMessages))
	for name, key := range defaultMessages {
		messages[name] = key
	}
	for name, key := range extraMessages {
		if name == "" {
			return nil, fmt.Errorf("empty message name for key %s", key)
		}
		messages[name] = key
	}

	seen := make(map[MessageKey]string, len(messages))
	for name, key := range messages {
		if other, ok := seen[key]; ok {
			return nil, fmt.Errorf("message key %s claimed by both %s and %s", key, other, name)
		}
		seen[key] = name
	}

	return buildTables(messages, defaultGnss, defaultSignals), nil
}

func buildTables(messages map[string]MessageKey, gnss map[uint8]string, signals map[uint8]map[uint8]string) *Tables {
	t := &Tables{
		messages:     make(map[string]MessageKey, len(messages)),
		messageByKey: make(map[MessageKey]string, len(messages)),
		gnss:         gnss,
		signals:      signals,
	}
	for name, key := range messages {
		t.messages[name] = key
		t.messageByKey[key] = name
	}
	return t
}

// MessageName returns the registry name for a key
func (t *Tables) MessageName(key MessageKey) (string, bool) {
	name, ok := t.messageByKey[key]
	return name, ok
}

// MessageKey returns the key registered for a message name
func (t *Tables) MessageKey(name string) (MessageKey, bool) {
	key, ok := t.messages[name]
	return key, ok
}

// MessageNames returns all registered names in sorted order
func (t *Tables) MessageNames() []string {
	names := make([]string, 0, len(t.messages))
	for name := range t.messages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GnssName returns the constellation name for a gnssId
func (t *Tables) GnssName(gnssID uint8) (string, bool) {
	name, ok := t.gnss[gnssID]
	return name, ok
}

// SignalName returns the signal name for a gnssId/sigId pair
func (t *Tables) SignalName(gnssID, sigID uint8) (string, bool) {
	sigs, ok := t.signals[gnssID]
	if !ok {
		return "", false
	}
	name, ok := sigs[sigID]
	return name, ok
}

// MessageName returns the default registry name for class/id, or "UNKNOWN".
func MessageName(class, id uint8) string {
	if name, ok := defaultTables.MessageName(Key(class, id)); ok {
		return name
	}
	return "UNKNOWN"
}
