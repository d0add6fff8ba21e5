package xmlfmt

import "errors"

// ErrOutputSink is wrapped into any error Format or Linearize returns when
// writing to the internal buffer sink fails. bytes.Buffer only ever
// returns bytes.ErrTooLarge, but the sentinel keeps callers from matching
// on that concrete stdlib type (spec §6's external-interfaces contract:
// callers check errors.Is against a package sentinel, never a string).
var ErrOutputSink = errors.New("xmlfmt: output sink failed")
