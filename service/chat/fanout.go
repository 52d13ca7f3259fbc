package chat

import (
	"SProject/logger"
)

type fanoutJob struct {
	conns   []*Client
	payload []byte
}

// Fanout pushes one encoded event to a computed set of recipients. Pure
// routing: no persistence, no acknowledgment, no retry. Each recipient
// receives independently; a dead or slow connection only loses its own
// copy and the rest of the batch is unaffected.
type Fanout struct {
	jobs chan fanoutJob
}

func NewFanout(workers, queue int) *Fanout {
	if workers <= 0 {
		workers = 4
	}
	if queue <= 0 {
		queue = 256
	}
	f := &Fanout{jobs: make(chan fanoutJob, queue)}
	for i := 0; i < workers; i++ {
		go func() {
			for job := range f.jobs {
				for _, c := range job.conns {
					c.Push(job.payload)
				}
			}
		}()
	}
	return f
}

// Dispatch encodes the event once and hands it to the workers. Malformed
// events fail locally and are never partially delivered.
func (f *Fanout) Dispatch(t EventType, data any, conns []*Client) error {
	if len(conns) == 0 {
		return nil
	}
	payload, err := EncodeFrame(t, data)
	if err != nil {
		logger.Errorf("[fanout] encode %s: %v", t.WireName(), err)
		return err
	}
	f.jobs <- fanoutJob{conns: conns, payload: payload}
	return nil
}
