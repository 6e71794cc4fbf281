package retrieval

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Callback payloads are what an interactive frontend attaches to its buttons,
// they are kept short (well under 64 bytes) by referencing a session instead
// of the query.
//
//	page_<session>_<page>
//	book_<session>_<page>_<index>
//	info_<book id>
//	send_<book id>
//	noop
type CallbackKind int

const (
	CallbackNoop CallbackKind = iota
	CallbackPage
	CallbackItem
	CallbackInfo
	CallbackSend
)

const NoopCallback = "noop"

var ErrInvalidCallback = errors.New("retrieval: invalid callback payload")

type Callback struct {
	Kind      CallbackKind
	SessionId string
	Page      int
	Index     int
	BookId    int
}

func EncodePage(sessionId string, page int) string {
	return fmt.Sprintf("page_%s_%d", sessionId, page)
}

func EncodeItem(sessionId string, page, index int) string {
	return fmt.Sprintf("book_%s_%d_%d", sessionId, page, index)
}

func EncodeInfo(bookId int) string {
	return fmt.Sprintf("info_%d", bookId)
}

func EncodeSend(bookId int) string {
	return fmt.Sprintf("send_%d", bookId)
}

func (c Callback) Encode() string {
	switch c.Kind {
	case CallbackPage:
		return EncodePage(c.SessionId, c.Page)
	case CallbackItem:
		return EncodeItem(c.SessionId, c.Page, c.Index)
	case CallbackInfo:
		return EncodeInfo(c.BookId)
	case CallbackSend:
		return EncodeSend(c.BookId)
	}
	return NoopCallback
}

// splitTrailingInts splits "<head>_<n1>_..._<nk>" into head and the k
// trailing integers, the head itself may not be empty.
func splitTrailingInts(s string, k int) (string, []int, bool) {
	ints := make([]int, k)
	for i := k - 1; i >= 0; i-- {
		sep := strings.LastIndexByte(s, '_')
		if sep < 0 {
			return "", nil, false
		}
		n, err := strconv.Atoi(s[sep+1:])
		if err != nil {
			return "", nil, false
		}
		ints[i] = n
		s = s[:sep]
	}
	if s == "" {
		return "", nil, false
	}
	return s, ints, true
}

func parseBookId(s string) (int, bool) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func ParseCallback(data string) (Callback, error) {
	invalid := fmt.Errorf("%w: %q", ErrInvalidCallback, data)

	switch {
	case data == NoopCallback:
		return Callback{Kind: CallbackNoop}, nil
	case strings.HasPrefix(data, "page_"):
		sessionId, ints, ok := splitTrailingInts(strings.TrimPrefix(data, "page_"), 1)
		if !ok {
			return Callback{}, invalid
		}
		return Callback{Kind: CallbackPage, SessionId: sessionId, Page: ints[0]}, nil
	case strings.HasPrefix(data, "book_"):
		sessionId, ints, ok := splitTrailingInts(strings.TrimPrefix(data, "book_"), 2)
		if !ok {
			return Callback{}, invalid
		}
		return Callback{Kind: CallbackItem, SessionId: sessionId, Page: ints[0], Index: ints[1]}, nil
	case strings.HasPrefix(data, "info_"):
		id, ok := parseBookId(strings.TrimPrefix(data, "info_"))
		if !ok {
			return Callback{}, invalid
		}
		return Callback{Kind: CallbackInfo, BookId: id}, nil
	case strings.HasPrefix(data, "send_"):
		id, ok := parseBookId(strings.TrimPrefix(data, "send_"))
		if !ok {
			return Callback{}, invalid
		}
		return Callback{Kind: CallbackSend, BookId: id}, nil
	}
	return Callback{}, invalid
}
