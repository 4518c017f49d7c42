package chat

import (
	"cmp"
	"context"
	"slices"

	"github.com/five82/statekit/internal/api"
	"github.com/five82/statekit/internal/store"
)

// GetAllMessages loads the history and opens the thread with the newest
// message.
func GetAllMessages(ctx context.Context, s *store.Store) error {
	_, err := s.Dispatch(ctx, "getAllMessages", nil)
	return err
}

// ReceiveMessage waits for the next incoming message and adds it.
func ReceiveMessage(ctx context.Context, s *store.Store) (api.Message, error) {
	v, err := s.Dispatch(ctx, "receiveMessage", nil)
	msg, _ := v.(api.Message)
	return msg, err
}

// SendMessage posts text to thread.
func SendMessage(ctx context.Context, s *store.Store, text string, thread api.ThreadRef) (api.Message, error) {
	v, err := s.Dispatch(ctx, "sendMessage", Outgoing{Text: text, Thread: thread})
	msg, _ := v.(api.Message)
	return msg, err
}

// SwitchThread opens the thread with the given id.
func SwitchThread(ctx context.Context, s *store.Store, id string) error {
	_, err := s.Dispatch(ctx, "switchThread", id)
	return err
}

// CurrentThread reads the open thread.
func CurrentThread(g store.Getters) (Thread, error) {
	return store.GetAs[Thread](g, "currentThread")
}

// SortedMessages reads the open thread's messages, oldest first.
func SortedMessages(g store.Getters) ([]api.Message, error) {
	return store.GetAs[[]api.Message](g, "sortedMessages")
}

// UnreadCount reads the number of threads whose last message is unread.
func UnreadCount(g store.Getters) (int, error) {
	return store.GetAs[int](g, "unreadCount")
}

// Of extracts the chat state from a snapshot.
func Of(tree store.Tree) State {
	st, _ := store.StateOf[State](tree, store.RootPath)
	return st
}

// Threads returns the threads of a snapshot, newest activity first.
func Threads(tree store.Tree) []Thread {
	st := Of(tree)
	out := make([]Thread, 0, len(st.Threads))
	for _, t := range st.Threads {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b Thread) int {
		if c := cmp.Compare(lastTimestamp(b), lastTimestamp(a)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func lastTimestamp(t Thread) int64 {
	if t.LastMessage == nil {
		return 0
	}
	return t.LastMessage.Timestamp
}
