package stripe

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// extractIntentFields pulls the intent id and status out of a webhook event's
// object payload without decoding the full PaymentIntent shape.
func extractIntentFields(raw []byte) (id, status string, err error) {
	d := jx.DecodeBytes(raw)
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "id":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "id")
			}
			id = v
			return nil
		case "status":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "status")
			}
			status = v
			return nil
		default:
			return d.Skip()
		}
	}); err != nil {
		return "", "", errors.Wrap(err, "decode object")
	}
	return id, status, nil
}
