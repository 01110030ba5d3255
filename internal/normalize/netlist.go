package normalize

import (
	"fmt"
	"sort"
	"strings"

	"pcbfuse/internal/diag"
	"pcbfuse/internal/errors"
	"pcbfuse/internal/source"
)

// Pins converts a decoded netlist into pin membership records. A
// malformed pin token is recorded as a parse warning and skipped; a pin
// claimed by two nets keeps its first net.
func Pins(nl *source.Netlist, diags *diag.List) ([]PinRecord, error) {
	var records []PinRecord
	switch nl.Format {
	case source.FormatENet:
		records = pinsFromENet(nl, diags)
	default:
		records = pinsFromBlocks(nl, diags)
	}

	if len(records) == 0 {
		return nil, errors.New(errors.InputEmpty, "netlist yielded no pin records", nil).WithFile(nl.Path)
	}

	// A pin belongs to exactly one net; first claim wins.
	seen := make(map[string]string, len(records))
	out := records[:0]
	for _, rec := range records {
		id := rec.Key + "." + rec.Pin
		if net, dup := seen[id]; dup {
			if net != rec.Net {
				diags.Warnf("netlist", "pin %s.%s claimed by %q and %q, keeping %q",
					rec.Designator, rec.Pin, net, rec.Net, net)
			}
			continue
		}
		seen[id] = rec.Net
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		if out[i].Pin != out[j].Pin {
			return out[i].Pin < out[j].Pin
		}
		return out[i].Net < out[j].Net
	})
	return out, nil
}

func pinsFromENet(nl *source.Netlist, diags *diag.List) []PinRecord {
	var records []PinRecord

	// Map iteration order is unstable; sort uids so warnings and
	// first-claim resolution are deterministic.
	uids := make([]string, 0, len(nl.Components))
	for uid := range nl.Components {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	for _, uid := range uids {
		comp := nl.Components[uid]
		designator := enetDesignator(comp.Props)
		if designator == "" {
			diags.Warnf("netlist", "component %s has no designator, skipped", uid)
			continue
		}
		key := NormalizeKey(designator)

		for pin, rawNet := range comp.Pins {
			pin = strings.TrimSpace(pin)
			if pin == "" {
				diags.Warnf("netlist", "empty pin number on %s, skipped", designator)
				continue
			}
			records = append(records, PinRecord{
				Key:        key,
				Designator: strings.TrimSpace(designator),
				Pin:        pin,
				Net:        strings.TrimSpace(stringify(rawNet)),
			})
		}
	}
	return records
}

func pinsFromBlocks(nl *source.Netlist, diags *diag.List) []PinRecord {
	var records []PinRecord

	for _, block := range nl.Blocks {
		if block.Name == "" {
			diags.Warnf("netlist", "%d pin token(s) before any net header, skipped", len(block.Tokens))
			continue
		}
		net := strings.TrimSpace(block.Name)

		for _, token := range block.Tokens {
			designator, pin, ok := SplitPinToken(token)
			if !ok {
				diags.Warnf("netlist", "malformed pin token %q in net %s, skipped", token, net)
				continue
			}
			records = append(records, PinRecord{
				Key:        NormalizeKey(designator),
				Designator: designator,
				Pin:        pin,
				Net:        net,
			})
		}
	}
	return records
}

// SplitPinToken splits a "REF.PIN" token on its last dot, so designators
// containing dots still parse. Returns ok=false when either half is
// empty or no dot is present.
func SplitPinToken(token string) (designator, pin string, ok bool) {
	token = strings.TrimSpace(token)
	i := strings.LastIndex(token, ".")
	if i <= 0 || i == len(token)-1 {
		return "", "", false
	}
	return token[:i], token[i+1:], true
}

// enetDesignator digs the designator out of an EasyEDA props map,
// tolerating the key spellings seen in real exports.
func enetDesignator(props map[string]interface{}) string {
	for _, key := range []string{"Designator", "designator", "Name"} {
		if v, ok := props[key]; ok {
			if s := strings.TrimSpace(stringify(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
