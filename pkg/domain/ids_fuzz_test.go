package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseListingID checks that parsing never panics on arbitrary input and
// always returns either a valid ID or an error.
func FuzzParseListingID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE listings;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseListingID(input)
		if err != nil {
			return
		}
		if id.IsNil() {
			t.Error("parsed nil id without error")
		}
		roundTrip, err := ParseListingID(id.String())
		if err != nil {
			t.Errorf("valid id failed round-trip: %v", err)
		}
		if roundTrip != id {
			t.Error("round-trip changed id value")
		}
		if !utf8.ValidString(id.String()) {
			t.Error("id string is not valid utf-8")
		}
	})
}

// FuzzParseCaseID_Consistency checks that ID kinds share one validation rule.
func FuzzParseCaseID_Consistency(f *testing.F) {
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("garbage")

	f.Fuzz(func(t *testing.T, input string) {
		_, errCase := ParseCaseID(input)
		_, errShipment := ParseShipmentID(input)
		_, errDocument := ParseDocumentID(input)
		if (errCase == nil) != (errShipment == nil) || (errCase == nil) != (errDocument == nil) {
			t.Error("inconsistent parsing across id kinds")
		}
	})
}
