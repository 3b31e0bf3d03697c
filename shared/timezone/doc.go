// Package timezone converts between the studio's naive wall-clock strings and absolute instants.
//
// Two kinds of values cross the API boundary:
//
//   - naive local strings ("2024-06-15T14:00"), typed by staff and stored in forms, which only have
//     meaning together with an IANA zone id;
//   - instants with an explicit offset ("2024-06-15T18:00:00.000Z"), which are read from storage.
//
// A Converter is built once from configuration with the studio zone as its default and is injected
// wherever times are parsed or rendered:
//
//	conv, _ := timezone.NewConverter("America/New_York", "ET", timezone.SystemClock{})
//	conv.LocalToUTCInstant("2024-06-15T14:00", "")   // "2024-06-15T18:00:00.000Z"
//	conv.FormatForDisplay("2024-06-15T18:00:00Z", "") // "Jun 15, 2024, 2:00 PM EDT"
//	conv.DeriveCallTimeOffset("2024-06-15T09:30")     // "08:30"
//
// Failures are reported internally as ErrParseFailure or ErrUnknownZone. The string-returning
// methods translate them to sentinels instead: "" for values meant to be edited or stored and
// Placeholder for display text. IsPastLockBoundary reports false.
//
// Daylight-saving transitions resolve the same way everywhere. A wall time that falls in a
// spring-forward gap keeps the offset in effect before the gap, so it moves forward by the gap
// length ("2024-03-10T02:30" in New York becomes 03:30 EDT). A wall time that occurs twice during
// a fall-back overlap resolves to the earlier instant.
package timezone
