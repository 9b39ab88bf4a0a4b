package descriptor

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/stealth-payments/pkg/address"
	"github.com/taurusgroup/stealth-payments/pkg/amount"
)

// Payload is the metadata hidden inside a descriptor.
//
// Addresses and amount are kept exactly as given to Create.
type Payload struct {
	Sender   string `cbor:"1,keyasint" json:"sender"`
	Receiver string `cbor:"2,keyasint" json:"receiver"`
	Amount   string `cbor:"3,keyasint" json:"amount"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(fmt.Sprintf("descriptor: cbor encoding mode: %v", err))
	}
	decOptions := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}
	if decMode, err = decOptions.DecMode(); err != nil {
		panic(fmt.Sprintf("descriptor: cbor decoding mode: %v", err))
	}
}

// Validate checks that both addresses are well-formed and that the amount is positive.
func (p *Payload) Validate() error {
	if _, err := address.Parse(p.Sender); err != nil {
		return fmt.Errorf("sender: %w", err)
	}
	if _, err := address.Parse(p.Receiver); err != nil {
		return fmt.Errorf("receiver: %w", err)
	}
	if _, err := amount.ParsePositive(p.Amount); err != nil {
		return err
	}
	return nil
}

// payloadWire carries the Payload fields without its methods, so the CBOR
// codec encodes the struct directly instead of calling back into MarshalBinary.
type payloadWire Payload

// MarshalBinary returns the canonical encoding of p, a deterministic CBOR map.
func (p *Payload) MarshalBinary() ([]byte, error) {
	return encMode.Marshal((*payloadWire)(p))
}

// UnmarshalBinary decodes data, rejecting anything that is not the canonical encoding of a Payload.
func (p *Payload) UnmarshalBinary(data []byte) error {
	var decoded Payload
	if err := decMode.Unmarshal(data, (*payloadWire)(&decoded)); err != nil {
		return err
	}
	canonical, err := decoded.MarshalBinary()
	if err != nil {
		return err
	}
	if !bytes.Equal(canonical, data) {
		return fmt.Errorf("payload is not canonically encoded")
	}
	*p = decoded
	return nil
}
