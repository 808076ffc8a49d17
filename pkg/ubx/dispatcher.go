// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

// DecodeFunc decodes the payload of one message type
type DecodeFunc func(payload []byte, dc DecodeContext) (Message, error)

// Unknown is the notification emitted for a frame without a registered
// decoder. Frame is the caller's frame, passed through unmodified.
type Unknown struct {
	Frame *Frame
	Key   MessageKey
	Name  string // registry name, or "UNKNOWN"
}

// UnknownHandler receives unknown-frame notifications
type UnknownHandler func(Unknown)

// Dispatcher routes frames to per-type decoders
type Dispatcher struct {
	decoders  map[MessageKey]DecodeFunc
	ctx       DecodeContext
	onUnknown UnknownHandler
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithClock sets the clock used to derive timestamps from iTOW
func WithClock(clock Clock) Option {
	return func(d *Dispatcher) {
		d.ctx.Timebase = NewTimebase(clock)
	}
}

// WithTables sets the identifier tables
func WithTables(t *Tables) Option {
	return func(d *Dispatcher) {
		d.ctx.Tables = t
	}
}

// WithUnknownHandler sets the callback for frames without a decoder
func WithUnknownHandler(h UnknownHandler) Option {
	return func(d *Dispatcher) {
		d.onUnknown = h
	}
}

// NewDispatcher creates a dispatcher with every built-in decoder registered
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		decoders: make(map[MessageKey]DecodeFunc, len(builtinDecoders)),
		ctx: DecodeContext{
			Timebase: NewTimebase(nil),
			Tables:   DefaultTables(),
		},
	}
	for key, fn := range builtinDecoders {
		d.decoders[key] = fn
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var builtinDecoders = map[MessageKey]DecodeFunc{
	Key(ClassNAV, IDNavStatus):    wrap(DecodeNavStatus),
	Key(ClassNAV, IDNavPosLLH):    wrap(DecodeNavPosLLH),
	Key(ClassNAV, IDNavVelNED):    wrap(DecodeNavVelNED),
	Key(ClassNAV, IDNavSat):       wrap(DecodeNavSat),
	Key(ClassNAV, IDNavSig):       wrap(DecodeNavSig),
	Key(ClassNAV, IDNavPVT):       wrap(DecodeNavPVT),
	Key(ClassNAV, IDNavHPPosLLH):  wrap(DecodeNavHPPosLLH),
	Key(ClassNAV, IDNavRelPosNED): wrap(DecodeNavRelPosNED),
	Key(ClassNAV, IDNavEOE):       wrap(DecodeNavEOE),
	Key(ClassMON, IDMonVer):       wrap(DecodeMonVer),
	Key(ClassMON, IDMonRF):        wrap(DecodeMonRF),
}

// wrap adapts a typed decoder so a failed decode yields a nil Message
// rather than a typed nil pointer.
func wrap[T Message](fn func([]byte, DecodeContext) (T, error)) DecodeFunc {
	return func(payload []byte, dc DecodeContext) (Message, error) {
		m, err := fn(payload, dc)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

// Register installs or replaces the decoder for key. It must not be called
// concurrently with Dispatch.
func (d *Dispatcher) Register(key MessageKey, fn DecodeFunc) {
	d.decoders[key] = fn
}

// Supported reports whether a decoder is registered for key
func (d *Dispatcher) Supported(key MessageKey) bool {
	_, ok := d.decoders[key]
	return ok
}

// Context returns the decode context handed to every decoder
func (d *Dispatcher) Context() DecodeContext {
	return d.ctx
}

// Dispatch decodes one frame. For an unregistered class/id it notifies the
// unknown handler and returns (nil, nil).
func (d *Dispatcher) Dispatch(f *Frame) (Message, error) {
	key := f.Key()
	fn, ok := d.decoders[key]
	if !ok {
		if d.onUnknown != nil {
			name, found := d.ctx.tables().MessageName(key)
			if !found {
				name = "UNKNOWN"
			}
			d.onUnknown(Unknown{Frame: f, Key: key, Name: name})
		}
		return nil, nil
	}
	return fn(f.Payload, d.ctx)
}
