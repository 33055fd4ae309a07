package store

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-widget/internal/domain"
	"github.com/Rrens/chat-widget/internal/llm"
)

// replyTask is a pending assistant reply bound to the conversation it was
// scheduled for
type replyTask struct {
	conversationID string
	request        llm.Request
}

// schedule starts the task on its own goroutine. Must be called with mu held.
func (s *Store) schedule(task replyTask) {
	s.wg.Add(1)
	go s.run(task)
}

func (s *Store) run(task replyTask) {
	defer s.wg.Done()

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-s.ctx.Done():
		return
	case <-timer.C:
	}

	reply := s.locale.ReplyFailed
	resp, err := s.replier.Reply(s.ctx, task.request)
	switch {
	case err != nil:
		if s.ctx.Err() != nil {
			return
		}
		log.Warn().Err(err).Str("conversation_id", task.conversationID).Msg("Assistant reply failed, using fallback")
	case resp != nil:
		reply = resp.Reply
		log.Debug().
			Str("conversation_id", task.conversationID).
			Str("model", resp.Model).
			Int64("latency_ms", resp.LatencyMs).
			Msg("Assistant replied")
	}

	// the conversation may have been deleted meanwhile
	if _, ok := s.AppendMessage(s.ctx, task.conversationID, reply, domain.MessageTypeAssistant, nil); !ok {
		log.Debug().Str("conversation_id", task.conversationID).Msg("Dropped reply for deleted conversation")
	}
}

// Wait blocks until every scheduled reply has finished
func (s *Store) Wait() {
	s.wg.Wait()
}

// Close cancels pending replies and waits for running ones to return
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
