/*
Package codec holds the binary encoding shared by the whole application.

Models and messages are encoded with go-amino. Messages are registered as
concrete implementations of the mig.Msg interface, so a governor payload
or a signed transaction can carry any of them.
*/
package codec

import (
	amino "github.com/tendermint/go-amino"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/errors"
)

// Cdc is the application wide codec.
var Cdc = amino.NewCodec()

func init() {
	Cdc.RegisterInterface((*mig.Msg)(nil), nil)
}

// RegisterMsg registers a message implementation under given name. Call
// it from the init function of the package declaring the message.
func RegisterMsg(msg mig.Msg, name string) {
	Cdc.RegisterConcrete(msg, name, nil)
}

// Marshal encodes a model or a message.
func Marshal(o interface{}) ([]byte, error) {
	bz, err := Cdc.MarshalBinaryBare(o)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidModel, "marshal %T: %s", o, err)
	}
	return bz, nil
}

// Unmarshal decodes raw data into ptr.
func Unmarshal(bz []byte, ptr interface{}) error {
	if err := Cdc.UnmarshalBinaryBare(bz, ptr); err != nil {
		return errors.Wrapf(errors.ErrInvalidModel, "unmarshal %T: %s", ptr, err)
	}
	return nil
}

// MarshalMsg encodes a message together with its type information.
func MarshalMsg(msg mig.Msg) ([]byte, error) {
	return Marshal(&msg)
}

// UnmarshalMsg decodes a message encoded with MarshalMsg.
func UnmarshalMsg(bz []byte) (mig.Msg, error) {
	var msg mig.Msg
	if err := Unmarshal(bz, &msg); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidMsg, err.Error())
	}
	if msg == nil {
		return nil, errors.Wrap(errors.ErrInvalidMsg, "empty message")
	}
	return msg, nil
}

// MarshalJSON encodes o as JSON, interfaces carry their registered name.
func MarshalJSON(o interface{}) ([]byte, error) {
	bz, err := Cdc.MarshalJSON(o)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidModel, "marshal json %T: %s", o, err)
	}
	return bz, nil
}

// UnmarshalJSON decodes JSON produced by MarshalJSON.
func UnmarshalJSON(bz []byte, ptr interface{}) error {
	if err := Cdc.UnmarshalJSON(bz, ptr); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "unmarshal json %T: %s", ptr, err)
	}
	return nil
}
