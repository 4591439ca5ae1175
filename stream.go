package nimbus

// StreamInto bridges a backend's incremental output onto a pending log entry.
//
// Every fragment emitted by the stream is applied via Log.AppendChunk exactly
// once, in emission order, as it arrives. On stream completion without error
// the entry is left in the text kind with the accumulated content; no
// finalize transition occurs. If the stream yields an error, iteration stops
// and the error is returned so the caller can apply the single terminal
// error transition.
func StreamInto(log *Log, id string, stream TextStream) error {
	for fragment, err := range stream {
		if err != nil {
			return err
		}
		if fragment == "" {
			continue
		}
		if err := log.AppendChunk(id, fragment); err != nil {
			return err
		}
	}
	return nil
}
