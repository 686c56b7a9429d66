// Package state хранит состояние чатов в памяти процесса. Состояние
// эфемерно: при перезапуске бота смещения недель сбрасываются в ноль,
// а отслеживаемые сообщения создаются заново при первом запросе.
package state

import "sync"

// TrackedMessage — единственное «живое» сообщение с расписанием в чате:
// идентификатор закреплённого сообщения и его последний текст.
type TrackedMessage struct {
	MessageID int
	Text      string
}

type chatState struct {
	// op сериализует операции над одним чатом: команда пользователя и
	// ежедневный обход не должны чередоваться между рендером и правкой.
	op      sync.Mutex
	offset  int
	tracked *TrackedMessage
}

// Store — потокобезопасное хранилище состояния по chat ID. Доступ к полям
// защищён общим замком, он никогда не удерживается на время сетевых вызовов;
// замок операции у каждого чата свой, поэтому независимые чаты
// обслуживаются параллельно.
type Store struct {
	mu    sync.RWMutex
	chats map[int64]*chatState
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{
		chats: make(map[int64]*chatState),
	}
}

func (s *Store) chat(chatID int64) *chatState {
	s.mu.RLock()
	cs, ok := s.chats[chatID]
	s.mu.RUnlock()
	if ok {
		return cs
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cs, ok = s.chats[chatID]; !ok {
		cs = &chatState{}
		s.chats[chatID] = cs
	}
	return cs
}

// LockChat захватывает замок операции чата на время полной
// последовательности «сдвиг — рендер — сравнение — правка».
func (s *Store) LockChat(chatID int64) {
	s.chat(chatID).op.Lock()
}

// UnlockChat освобождает замок операции чата.
func (s *Store) UnlockChat(chatID int64) {
	s.chat(chatID).op.Unlock()
}

// Offset возвращает текущее смещение недели для чата (0 по умолчанию).
func (s *Store) Offset(chatID int64) int {
	cs := s.chat(chatID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cs.offset
}

// AdjustOffset прибавляет delta к смещению чата и возвращает новое значение.
func (s *Store) AdjustOffset(chatID int64, delta int) int {
	cs := s.chat(chatID)
	s.mu.Lock()
	defer s.mu.Unlock()
	cs.offset += delta
	return cs.offset
}

// ResetOffset принудительно возвращает чат к текущей неделе.
func (s *Store) ResetOffset(chatID int64) {
	cs := s.chat(chatID)
	s.mu.Lock()
	defer s.mu.Unlock()
	cs.offset = 0
}

// Tracked возвращает отслеживаемое сообщение чата, если оно есть.
func (s *Store) Tracked(chatID int64) (TrackedMessage, bool) {
	cs := s.chat(chatID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cs.tracked == nil {
		return TrackedMessage{}, false
	}
	return *cs.tracked, true
}

// SetTracked записывает отслеживаемое сообщение чата, заменяя предыдущее.
func (s *Store) SetTracked(chatID int64, msg TrackedMessage) {
	cs := s.chat(chatID)
	s.mu.Lock()
	defer s.mu.Unlock()
	cs.tracked = &msg
}

// TrackedChats возвращает идентификаторы всех чатов, в которых уже есть
// отслеживаемое сообщение. Порядок не определён.
func (s *Store) TrackedChats() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.chats))
	for id, cs := range s.chats {
		if cs.tracked != nil {
			ids = append(ids, id)
		}
	}
	return ids
}
