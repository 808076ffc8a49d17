// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatch_Registered(t *testing.T) {
	d := NewDispatcher(WithClock(testClock))

	m, err := d.Dispatch(NewFrame(ClassNAV, IDNavEOE, newPayload(4).u4(0, 77)))
	require.NoError(t, err)
	eoe, ok := m.(*NavEOE)
	require.True(t, ok)
	require.Equal(t, uint32(77), eoe.Data.ITOW)
}

func TestDispatch_UnknownNotifiesWithoutMutation(t *testing.T) {
	var got []Unknown
	d := NewDispatcher(WithUnknownHandler(func(u Unknown) {
		got = append(got, u)
	}))

	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	original := append([]byte{}, payload...)
	frame := NewFrame(ClassNAV, 0x01, payload)

	m, err := d.Dispatch(frame)
	require.NoError(t, err)
	require.Nil(t, m)

	require.Len(t, got, 1)
	require.Equal(t, Key(ClassNAV, 0x01), got[0].Key)
	require.Equal(t, "NAV-POSECEF", got[0].Name)
	require.Same(t, frame, got[0].Frame)
	require.True(t, bytes.Equal(original, got[0].Frame.Payload))
	require.True(t, bytes.Equal(original, payload))
	require.Equal(t, uint8(ClassNAV), got[0].Frame.Class)
	require.Equal(t, uint8(0x01), got[0].Frame.ID)
}

func TestDispatch_UnknownUnregisteredName(t *testing.T) {
	var got Unknown
	d := NewDispatcher(WithUnknownHandler(func(u Unknown) { got = u }))

	_, err := d.Dispatch(NewFrame(0x7F, 0x7F, nil))
	require.NoError(t, err)
	require.Equal(t, "UNKNOWN", got.Name)
}

func TestDispatch_UnknownWithoutHandler(t *testing.T) {
	d := NewDispatcher()
	m, err := d.Dispatch(NewFrame(0x7F, 0x7F, nil))
	require.NoError(t, err)
	require.Nil(t, m)
}

func TestDispatch_SubsequentFramesUnaffected(t *testing.T) {
	unknown := 0
	d := NewDispatcher(WithUnknownHandler(func(Unknown) { unknown++ }))

	_, err := d.Dispatch(NewFrame(ClassNAV, IDNavPVT, newPayload(10)))
	require.ErrorIs(t, err, ErrShortPayload)

	_, err = d.Dispatch(NewFrame(ClassRXM, 0x15, newPayload(10)))
	require.NoError(t, err)

	m, err := d.Dispatch(NewFrame(ClassNAV, IDNavEOE, newPayload(4)))
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Equal(t, 1, unknown)
}

func TestDispatch_DecodeErrorReturnsNilMessage(t *testing.T) {
	d := NewDispatcher()
	m, err := d.Dispatch(NewFrame(ClassMON, IDMonVer, newPayload(10)))
	require.Nil(t, m)

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	require.Equal(t, TypeMonVer, de.Type)
}

func TestDispatch_RegisterOverrides(t *testing.T) {
	d := NewDispatcher()
	key := Key(ClassRXM, 0x15)
	require.False(t, d.Supported(key))

	d.Register(key, func(payload []byte, dc DecodeContext) (Message, error) {
		return &NavEOE{Envelope: Envelope{Type: "RXM-RAWX"}}, nil
	})
	require.True(t, d.Supported(key))

	m, err := d.Dispatch(NewFrame(ClassRXM, 0x15, nil))
	require.NoError(t, err)
	require.Equal(t, "RXM-RAWX", m.MessageType())
}

func TestDispatch_WithTables(t *testing.T) {
	tables, err := NewTables(map[string]MessageKey{"RXM-CUSTOM": {ClassRXM, 0x7E}})
	require.NoError(t, err)

	var got Unknown
	d := NewDispatcher(WithTables(tables), WithUnknownHandler(func(u Unknown) { got = u }))
	_, err = d.Dispatch(NewFrame(ClassRXM, 0x7E, nil))
	require.NoError(t, err)
	require.Equal(t, "RXM-CUSTOM", got.Name)
	require.Same(t, tables, d.Context().Tables)
}
