package pubsub

import (
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Encode packs a change for the wire.
func Encode(c Change) ([]byte, error) {
	data, err := msgpack.Marshal(c)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err)
		return nil, err
	}
	return data, nil
}

// Decode unpacks a change received from the wire.
func Decode(data []byte) (Change, error) {
	var c Change
	if err := msgpack.Unmarshal(data, &c); err != nil {
		log.Error("MessagePack unmarshal error", "error", err)
		return Change{}, err
	}
	return c, nil
}
