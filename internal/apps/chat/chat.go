// Package chat is the chat example store: threads, messages and the
// currently open thread.
package chat

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/five82/statekit/internal/api"
	"github.com/five82/statekit/internal/store"
)

// ErrUnknownThread reports a thread id with no thread.
var ErrUnknownThread = errors.New("unknown thread")

// Thread is a conversation. Messages holds message ids in arrival order.
type Thread struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Messages    []string     `json:"messages"`
	LastMessage *api.Message `json:"lastMessage"`
}

// State is the chat store's root state.
type State struct {
	CurrentThreadID string                 `json:"currentThreadId"`
	Threads         map[string]Thread      `json:"threads"`
	Messages        map[string]api.Message `json:"messages"`
}

// Outgoing is the payload for sending a message.
type Outgoing struct {
	Text   string        `json:"text"`
	Thread api.ThreadRef `json:"thread"`
}

// Deps configure a chat store.
type Deps struct {
	Chat    api.Chat
	Plugins []store.Plugin
	Strict  bool
	Logger  *slog.Logger
}

// New builds the chat store.
func New(deps Deps) (*store.Store, error) {
	if deps.Chat == nil {
		return nil, fmt.Errorf("chat: api is required")
	}
	return store.New(store.Config[State]{
		Module: store.Module[State]{
			State: func() State {
				return State{Threads: map[string]Thread{}, Messages: map[string]api.Message{}}
			},
			Getters:   getters(),
			Mutations: mutations(),
			Actions:   actions(deps.Chat),
		},
		Plugins: deps.Plugins,
		Strict:  deps.Strict,
		Logger:  deps.Logger,
	})
}

func getters() map[string]store.GetterFunc[State] {
	return map[string]store.GetterFunc[State]{
		"currentThread": func(st State, _ store.Getters, _ store.Tree, _ store.Getters) (any, error) {
			if st.CurrentThreadID == "" {
				return Thread{Name: "Messages"}, nil
			}
			return st.Threads[st.CurrentThreadID], nil
		},
		"currentMessages": func(st State, g store.Getters, _ store.Tree, _ store.Getters) (any, error) {
			thread, err := store.GetAs[Thread](g, "currentThread")
			if err != nil {
				return nil, err
			}
			out := make([]api.Message, 0, len(thread.Messages))
			for _, id := range thread.Messages {
				out = append(out, st.Messages[id])
			}
			return out, nil
		},
		"unreadCount": func(st State, _ store.Getters, _ store.Tree, _ store.Getters) (any, error) {
			count := 0
			for _, t := range st.Threads {
				if t.LastMessage == nil || !t.LastMessage.IsRead {
					count++
				}
			}
			return count, nil
		},
		"sortedMessages": func(_ State, g store.Getters, _ store.Tree, _ store.Getters) (any, error) {
			msgs, err := store.GetAs[[]api.Message](g, "currentMessages")
			if err != nil {
				return nil, err
			}
			sorted := slices.Clone(msgs)
			slices.SortStableFunc(sorted, func(a, b api.Message) int {
				return cmp.Compare(a.Timestamp, b.Timestamp)
			})
			return sorted, nil
		},
	}
}

func mutations() map[string]store.MutationFunc[State] {
	return map[string]store.MutationFunc[State]{
		"addMessage": store.Mutation(func(st *State, msg api.Message) error {
			thread, ok := st.Threads[msg.ThreadID]
			if !ok {
				return fmt.Errorf("message %s: %w %q", msg.ID, ErrUnknownThread, msg.ThreadID)
			}
			msg.IsRead = msg.ThreadID == st.CurrentThreadID
			if !slices.Contains(thread.Messages, msg.ID) {
				thread.Messages = append(thread.Messages, msg.ID)
				last := msg
				thread.LastMessage = &last
				st.Threads[msg.ThreadID] = thread
			}
			st.Messages[msg.ID] = msg
			return nil
		}),
		"createThread": store.Mutation(func(st *State, ref api.ThreadRef) error {
			st.Threads[ref.ID] = Thread{ID: ref.ID, Name: ref.Name, Messages: []string{}}
			return nil
		}),
		"setCurrentThread": store.Mutation(func(st *State, id string) error {
			thread, ok := st.Threads[id]
			if !ok {
				return fmt.Errorf("%w %q", ErrUnknownThread, id)
			}
			st.CurrentThreadID = id
			if thread.LastMessage != nil {
				last := *thread.LastMessage
				last.IsRead = true
				thread.LastMessage = &last
				st.Threads[id] = thread
				if m, ok := st.Messages[last.ID]; ok {
					m.IsRead = true
					st.Messages[last.ID] = m
				}
			}
			return nil
		}),
	}
}

func actions(chat api.Chat) map[string]store.ActionFunc[State] {
	add := func(ac store.ActionContext[State], msg api.Message) error {
		if _, ok := ac.State().Threads[msg.ThreadID]; !ok {
			if err := ac.Commit("createThread", api.ThreadRef{ID: msg.ThreadID, Name: msg.ThreadName}); err != nil {
				return err
			}
		}
		return ac.Commit("addMessage", msg)
	}
	return map[string]store.ActionFunc[State]{
		"getAllMessages": func(ctx context.Context, ac store.ActionContext[State], _ any) (any, error) {
			msgs, err := chat.Messages(ctx)
			if err != nil {
				return nil, fmt.Errorf("fetch messages: %w", err)
			}
			var latest *api.Message
			for i := range msgs {
				if err := add(ac, msgs[i]); err != nil {
					return nil, err
				}
				if latest == nil || msgs[i].Timestamp > latest.Timestamp {
					latest = &msgs[i]
				}
			}
			if latest == nil {
				return nil, nil
			}
			return nil, ac.Commit("setCurrentThread", latest.ThreadID)
		},
		// receiveMessage with no payload waits for the next incoming
		// message; with an Outgoing payload it creates one.
		"receiveMessage": func(ctx context.Context, ac store.ActionContext[State], payload any) (any, error) {
			var (
				msg api.Message
				err error
			)
			switch p := payload.(type) {
			case nil:
				msg, err = chat.Incoming(ctx)
			case Outgoing:
				msg, err = chat.CreateMessage(ctx, p.Text, p.Thread)
			default:
				return nil, fmt.Errorf("%w: got %T, want Outgoing or nil", store.ErrPayloadType, payload)
			}
			if err != nil {
				return nil, fmt.Errorf("receive message: %w", err)
			}
			return msg, add(ac, msg)
		},
		"sendMessage": store.Action(func(ctx context.Context, ac store.ActionContext[State], out Outgoing) (any, error) {
			msg, err := chat.CreateMessage(ctx, out.Text, out.Thread)
			if err != nil {
				return nil, fmt.Errorf("send message: %w", err)
			}
			return msg, ac.Commit("addMessage", msg)
		}),
		"switchThread": store.Action(func(_ context.Context, ac store.ActionContext[State], id string) (any, error) {
			return nil, ac.Commit("setCurrentThread", id)
		}),
	}
}
