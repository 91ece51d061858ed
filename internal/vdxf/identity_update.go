package vdxf

import (
	"encoding/hex"
	"encoding/json"

	dErrors "valu/pkg/domain-errors"
)

// SerializedHex is the hand-off form of a binary record.
type SerializedHex struct {
	SerializedHex string `json:"serializedhex"`
}

// NewSerializedHex hex-encodes b.
func NewSerializedHex(b []byte) SerializedHex {
	return SerializedHex{SerializedHex: hex.EncodeToString(b)}
}

// Bytes decodes the hex payload.
func (s SerializedHex) Bytes() ([]byte, error) {
	b, err := hex.DecodeString(s.SerializedHex)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: serializedhex is not hex")
	}
	return b, nil
}

// IdentityUpdate is the {"contentmultimap": {...}} document handed to an
// identity-update transaction builder. Keys keep insertion order and each
// key holds an ordered list of JSON items.
type IdentityUpdate struct {
	ContentMultiMap Object
}

// NewIdentityUpdate returns an empty update.
func NewIdentityUpdate() *IdentityUpdate {
	return &IdentityUpdate{ContentMultiMap: Object{}}
}

// Add appends items under key.
func (u *IdentityUpdate) Add(key Identifier, items ...any) error {
	existing, err := u.rawItems(key)
	if err != nil {
		return err
	}
	for _, item := range items {
		raw, err := rawValue(item)
		if err != nil {
			return err
		}
		existing = append(existing, raw)
	}
	return u.ContentMultiMap.Set(key.String(), existing)
}

// AddSerialized appends b as a serializedhex item under key.
func (u *IdentityUpdate) AddSerialized(key Identifier, b []byte) error {
	return u.Add(key, NewSerializedHex(b))
}

// Items returns the raw items under key.
func (u *IdentityUpdate) Items(key Identifier) []json.RawMessage {
	items, _ := u.rawItems(key)
	return items
}

// Serialized decodes every serializedhex item under key.
func (u *IdentityUpdate) Serialized(key Identifier) ([][]byte, error) {
	var out [][]byte
	for _, item := range u.Items(key) {
		var s SerializedHex
		if err := json.Unmarshal(item, &s); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: serializedhex item")
		}
		b, err := s.Bytes()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Keys lists the content keys in order.
func (u *IdentityUpdate) Keys() ([]Identifier, error) {
	keys := make([]Identifier, 0, len(u.ContentMultiMap))
	for _, k := range u.ContentMultiMap.Keys() {
		id, err := ParseIdentifier(k)
		if err != nil {
			return nil, err
		}
		keys = append(keys, id)
	}
	return keys, nil
}

// Merge appends other's items key by key.
func (u *IdentityUpdate) Merge(other *IdentityUpdate) error {
	for _, m := range other.ContentMultiMap {
		id, err := ParseIdentifier(m.Key)
		if err != nil {
			return err
		}
		var items []json.RawMessage
		if err := json.Unmarshal(m.Value, &items); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: identity update items")
		}
		anyItems := make([]any, len(items))
		for i, it := range items {
			anyItems[i] = it
		}
		if err := u.Add(id, anyItems...); err != nil {
			return err
		}
	}
	return nil
}

func (u *IdentityUpdate) rawItems(key Identifier) ([]json.RawMessage, error) {
	raw, ok := u.ContentMultiMap.Get(key.String())
	if !ok {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "vdxf: identity update items")
	}
	return items, nil
}

func (u *IdentityUpdate) MarshalJSON() ([]byte, error) {
	cmm := u.ContentMultiMap
	if cmm == nil {
		cmm = Object{}
	}
	raw, err := cmm.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return Object{{Key: "contentmultimap", Value: raw}}.MarshalJSON()
}

func (u *IdentityUpdate) UnmarshalJSON(data []byte) error {
	obj, err := ReadObject(data)
	if err != nil {
		return err
	}
	raw, ok := obj.Get("contentmultimap")
	if !ok {
		return dErrors.New(dErrors.CodeMissingRequiredField, "vdxf: identity update without contentmultimap")
	}
	cmm, err := ReadObject(raw)
	if err != nil {
		return err
	}
	u.ContentMultiMap = cmm
	return nil
}
