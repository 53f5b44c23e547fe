package record

import "openwhisper/internal/audio"

type captured struct {
	chunks [][]byte
	err    error
}

// capture reads chunks while the session is active. The buffer is private to
// this run and handed over on done, which Stop waits for.
func (s *Session) capture(stream audio.Stream, done chan<- captured) {
	var chunks [][]byte
	for s.active.Load() {
		data, err := stream.Read()
		if err != nil {
			done <- captured{chunks: chunks, err: &CaptureError{Chunks: len(chunks), Err: err}}
			return
		}
		chunks = append(chunks, data)
	}
	done <- captured{chunks: chunks}
}
