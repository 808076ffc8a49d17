// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"errors"
	"fmt"
)

// AnomalyType represents different types of message anomalies
type AnomalyType int

const (
	AnomalyLengthMismatch AnomalyType = iota
	AnomalyShortPayload
	AnomalyInvalidCoordinate
	AnomalyFixInconsistent
	AnomalyInvalidLlh
	AnomalyJamming
	AnomalyUnusableSignal
	AnomalyUnknownVersion
)

var anomalyNames = map[AnomalyType]string{
	AnomalyLengthMismatch:    "length_mismatch",
	AnomalyShortPayload:      "short_payload",
	AnomalyInvalidCoordinate: "invalid_coordinate",
	AnomalyFixInconsistent:   "fix_inconsistent",
	AnomalyInvalidLlh:        "invalid_llh",
	AnomalyJamming:           "jamming",
	AnomalyUnusableSignal:    "unusable_signal",
	AnomalyUnknownVersion:    "unknown_version",
}

// String returns the anomaly name used in logs and statistics
func (a AnomalyType) String() string {
	if name, ok := anomalyNames[a]; ok {
		return name
	}
	return fmt.Sprintf("anomaly(%d)", int(a))
}

// ValidationError represents a message validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateDecodeError converts a decoder failure into a validation error
func ValidateDecodeError(err error) []ValidationError {
	var de *DecodeError
	if !errors.As(err, &de) {
		return nil
	}
	return []ValidationError{{
		Type:    AnomalyShortPayload,
		Message: de.Error(),
		Details: map[string]interface{}{"field": de.Field, "length": de.Have, "expected": de.Need},
	}}
}

// ValidateMessage checks a decoded message and the frame it came from.
// Returns a slice of validation errors (empty if the message is plausible).
func ValidateMessage(f *Frame, m Message) []ValidationError {
	errs := []ValidationError{}

	if f != nil {
		if want, ok := expectedLength(m); ok && want != len(f.Payload) {
			errs = append(errs, ValidationError{
				Type:    AnomalyLengthMismatch,
				Message: fmt.Sprintf("%s payload length %d (expected %d)", m.MessageType(), len(f.Payload), want),
				Details: map[string]interface{}{"length": len(f.Payload), "expected": want},
			})
		}
	}

	switch msg := m.(type) {
	case *NavPosLLH:
		errs = append(errs, validateCoordinates(msg.Type, msg.Data.Lat, msg.Data.Lon)...)
	case *NavPVT:
		errs = append(errs, validatePVT(msg)...)
	case *NavHPPosLLH:
		if msg.Data.Flags.InvalidLlh {
			errs = append(errs, invalidLlh(msg.Type))
		} else {
			errs = append(errs, validateCoordinates(msg.Type, msg.Data.Lat.Degrees(), msg.Data.Lon.Degrees())...)
		}
	case *NavStatus:
		if msg.Data.Flags.GPSFixOK && msg.Data.GPSFix.Value == 0 {
			errs = append(errs, fixInconsistent(msg.Type))
		}
	case *NavSat:
		for _, sv := range msg.Data.Sats {
			if sv.Flags.SvUsed && sv.Flags.QualityInd.Value < qualityCodeLocked {
				errs = append(errs, unusableSignal(msg.Type, sv.GNSS, sv.SvID, sv.Flags.QualityInd))
			}
		}
	case *NavSig:
		for _, sig := range msg.Data.Sigs {
			if sig.Flags.PrUsed && sig.QualityInd.Value < qualityCodeLocked {
				errs = append(errs, unusableSignal(msg.Type, sig.GNSS, sig.SvID, sig.QualityInd))
			}
		}
	case *MonRF:
		errs = append(errs, validateRF(msg)...)
	}

	return errs
}

// expectedLength returns the exact payload length implied by the message
func expectedLength(m Message) (int, bool) {
	switch msg := m.(type) {
	case *NavStatus:
		return 16, true
	case *NavPosLLH:
		return 28, true
	case *NavVelNED:
		return 36, true
	case *NavPVT:
		return 92, true
	case *NavHPPosLLH:
		return 36, true
	case *NavRelPosNED:
		return 64, true
	case *NavEOE:
		return 4, true
	case *NavSat:
		return navSatHeaderSize + navSatStride*int(msg.Data.NumSvs), true
	case *NavSig:
		return navSigHeaderSize + navSigStride*int(msg.Data.NumSigs), true
	case *MonVer:
		return monVerMinSize + monVerExtSize*len(msg.Data.Extensions), true
	case *MonRF:
		if msg.Data.Version != MonRFVersion {
			return 0, false
		}
		return monRFHeaderSize + monRFStride*int(msg.Data.NBlocks), true
	}
	return 0, false
}

func validatePVT(msg *NavPVT) []ValidationError {
	errs := []ValidationError{}
	d := msg.Data
	if d.Flags3.InvalidLlh {
		errs = append(errs, invalidLlh(msg.Type))
	} else if d.FixType.Value != 0 {
		errs = append(errs, validateCoordinates(msg.Type, d.Lat, d.Lon)...)
	}
	if d.Flags.GNSSFixOK && d.FixType.Value == 0 {
		errs = append(errs, fixInconsistent(msg.Type))
	}
	return errs
}

func validateCoordinates(typ string, lat, lon float64) []ValidationError {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return []ValidationError{{
			Type:    AnomalyInvalidCoordinate,
			Message: fmt.Sprintf("%s coordinate out of range lat=%.7f lon=%.7f", typ, lat, lon),
			Details: map[string]interface{}{"lat": lat, "lon": lon},
		}}
	}
	return nil
}

func validateRF(msg *MonRF) []ValidationError {
	if msg.Data.Version != MonRFVersion {
		return []ValidationError{{
			Type:    AnomalyUnknownVersion,
			Message: fmt.Sprintf("%s version %d not supported, blocks skipped", msg.Type, msg.Data.Version),
			Details: map[string]interface{}{"version": msg.Data.Version},
		}}
	}
	errs := []ValidationError{}
	for _, b := range msg.Data.Blocks {
		if b.JammingState.Value < 2 {
			continue
		}
		errs = append(errs, ValidationError{
			Type:    AnomalyJamming,
			Message: fmt.Sprintf("%s block %d jamming %s (jamInd=%d)", msg.Type, b.BlockID, b.JammingState, b.JamInd),
			Details: map[string]interface{}{"block": b.BlockID, "state": b.JammingState.Name, "jamInd": b.JamInd},
		})
	}
	return errs
}

func invalidLlh(typ string) ValidationError {
	return ValidationError{
		Type:    AnomalyInvalidLlh,
		Message: fmt.Sprintf("%s position flagged invalid", typ),
	}
}

func fixInconsistent(typ string) ValidationError {
	return ValidationError{
		Type:    AnomalyFixInconsistent,
		Message: fmt.Sprintf("%s fix flagged OK with no fix type", typ),
	}
}

// qualityCodeLocked is the lowest qualityInd a signal used in the fix can report
const qualityCodeLocked = 4

func unusableSignal(typ string, gnss Constellation, svID uint8, quality EnumField) ValidationError {
	return ValidationError{
		Type:    AnomalyUnusableSignal,
		Message: fmt.Sprintf("%s gnss=%d sv=%d used in fix with quality %s", typ, gnss.ID, svID, quality),
		Details: map[string]interface{}{"gnssId": gnss.ID, "svId": svID, "qualityInd": quality.Value},
	}
}
