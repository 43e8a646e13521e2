package instrumentation

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/frontendintel/fie-mcp-server/internal/config"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Manager owns one Buffers instance per live session and attaches Rod/CDP
// collectors to a page, adapted from the teacher's startEventStream
// goroutine-per-session design.
type Manager struct {
	cfg config.InstrumentationConfig

	mu      sync.RWMutex
	buffers map[string]*Buffers
}

// NewManager creates a collector manager bound to the given tunables.
func NewManager(cfg config.InstrumentationConfig) *Manager {
	return &Manager{
		cfg:     cfg,
		buffers: make(map[string]*Buffers),
	}
}

// Get returns the buffers for a session, if attached.
func (m *Manager) Get(sessionID string) (*Buffers, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.buffers[sessionID]
	return b, ok
}

// Remove drops a session's buffers once its page is released.
func (m *Manager) Remove(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.buffers, sessionID)
}

// Attach installs collectors on page before navigation so the first document
// load is observed (spec.md §4.2), and returns a stop function that must be
// called on session release to disable coverage cleanly.
func (m *Manager) Attach(ctx context.Context, sessionID string, page *rod.Page, enableCoverage bool) func() {
	buf := NewBuffers(m.cfg.BufferCapacity())

	m.mu.Lock()
	m.buffers[sessionID] = buf
	m.mu.Unlock()

	redact := make(map[string]bool, len(m.cfg.RedactHeaders))
	for _, h := range m.cfg.RedactHeaders {
		redact[strings.ToLower(h)] = true
	}

	if enableCoverage {
		_ = proto.ProfilerEnable{}.Call(page)
		_ = proto.ProfilerStartPreciseCoverage{Detailed: true}.Call(page)
	}

	pctx := page.Context(ctx)

	wait := pctx.EachEvent(
		func(ev *proto.RuntimeConsoleAPICalled) {
			seq := buf.NextSeq()
			buf.Console.Append(ConsoleEvent{
				Seq:       seq,
				Kind:      string(ev.Type),
				Message:   stringifyConsoleArgs(ev.Args),
				Timestamp: time.Now(),
			})
		},
		func(ev *proto.RuntimeExceptionThrown) {
			seq := buf.NextSeq()
			msg := ev.ExceptionDetails.Text
			stack := ""
			if ev.ExceptionDetails.Exception != nil {
				if ev.ExceptionDetails.Exception.Description != "" {
					msg = ev.ExceptionDetails.Exception.Description
				}
				if ev.ExceptionDetails.StackTrace != nil {
					stack = formatStackTrace(ev.ExceptionDetails.StackTrace)
				}
			}
			buf.Console.Append(ConsoleEvent{
				Seq:       seq,
				Kind:      "pageerror",
				Message:   msg,
				Stack:     stack,
				Timestamp: time.Now(),
			})
		},
		func(ev *proto.NetworkRequestWillBeSent) {
			now := time.Now()
			headers := redactHeaders(ev.Request.Headers, redact)
			initiatorStack, initiatorType := "", ""
			if ev.Initiator != nil {
				initiatorType = string(ev.Initiator.Type)
				if ev.Initiator.Stack != nil {
					initiatorStack = formatInitiatorStack(ev.Initiator.Stack)
				}
			}
			buf.StartRequest(string(ev.RequestID), &NetworkEvent{
				ID:             string(ev.RequestID),
				URL:            ev.Request.URL,
				Method:         ev.Request.Method,
				RequestHeaders: headers,
				InitiatorStack: initiatorStack,
				InitiatorType:  initiatorType,
				StartedAt:      now,
			})
		},
		func(ev *proto.NetworkResponseReceived) {
			buf.UpdateRequest(string(ev.RequestID), func(net *NetworkEvent) {
				net.Status = ev.Response.Status
				net.ResponseHeaders = redactHeaders(ev.Response.Headers, redact)
				if ev.Response.Timing != nil {
					net.Timings = Timings{
						DNSMs:      nonNegative(ev.Response.Timing.DNSEnd - ev.Response.Timing.DNSStart),
						ConnectMs:  nonNegative(ev.Response.Timing.ConnectEnd - ev.Response.Timing.ConnectStart),
						SSLMs:      nonNegative(ev.Response.Timing.SSLEnd - ev.Response.Timing.SSLStart),
						TTFBMs:     nonNegative(ev.Response.Timing.ReceiveHeadersEnd - ev.Response.Timing.SendEnd),
						DownloadMs: 0,
						TotalMs:    nonNegative(ev.Response.Timing.ReceiveHeadersEnd),
					}
				}
			})
		},
		func(ev *proto.NetworkLoadingFinished) {
			buf.UpdateRequest(string(ev.RequestID), func(net *NetworkEvent) {
				net.EndedAt = time.Now()
			})

			// Bodies are captured lazily, capped per response (spec.md §4.2).
			body, truncated, err := fetchResponseBody(page, ev.RequestID, m.cfg.BodyCap())
			if err == nil {
				buf.UpdateRequest(string(ev.RequestID), func(net *NetworkEvent) {
					net.ResponseBody = body
					net.BodyTruncated = truncated
				})
			}

			if _, ok := buf.FinishRequest(string(ev.RequestID)); ok {
				// seq stamped on append for total ordering across kinds.
			}
		},
		func(ev *proto.NetworkLoadingFailed) {
			// Requests blocked by CORS, DNS failure, or a dropped connection
			// never fire LoadingFinished; without this handler they'd leak in
			// buf.pending and the Error Reasoner's network correlation
			// (spec.md §4.6) would never see exactly the failed requests it's
			// meant to prefer.
			buf.UpdateRequest(string(ev.RequestID), func(net *NetworkEvent) {
				net.EndedAt = time.Now()
				net.ErrorText = ev.ErrorText
			})
			buf.FinishRequest(string(ev.RequestID))
		},
	)

	go func() {
		wait()
	}()

	return func() {
		if !enableCoverage {
			return
		}
		res, err := proto.ProfilerTakePreciseCoverage{}.Call(page)
		if err == nil && res != nil {
			for _, script := range res.Result {
				ranges := make([]CoverageRange, 0)
				for _, fn := range script.Functions {
					for _, r := range fn.Ranges {
						ranges = append(ranges, CoverageRange{
							StartOffset: r.StartOffset,
							EndOffset:   r.EndOffset,
							Count:       r.Count,
						})
					}
				}
				buf.Coverage.Append(CoverageEvent{
					Seq:           buf.NextSeq(),
					ScriptURL:     script.URL,
					RangesCovered: ranges,
				})
			}
		}
		_ = proto.ProfilerStopPreciseCoverage{}.Call(page)
	}
}

func stringifyConsoleArgs(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a == nil {
			continue
		}
		if !a.Value.Nil() {
			parts = append(parts, a.Value.String())
			continue
		}
		if a.Description != "" {
			parts = append(parts, a.Description)
		}
	}
	return strings.Join(parts, " ")
}

func formatStackTrace(st *proto.RuntimeStackTrace) string {
	var b strings.Builder
	for _, f := range st.CallFrames {
		b.WriteString(f.FunctionName)
		b.WriteString(" (")
		b.WriteString(f.URL)
		b.WriteString(":")
		b.WriteString(itoa(f.LineNumber))
		b.WriteString(")\n")
	}
	return strings.TrimSpace(b.String())
}

func formatInitiatorStack(st *proto.RuntimeStackTrace) string {
	return formatStackTrace(st)
}

func redactHeaders(h proto.NetworkHeaders, redact map[string]bool) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		lk := strings.ToLower(k)
		if redact[lk] {
			out[k] = "[redacted]"
			continue
		}
		out[k] = stringifyHeaderValue(v)
	}
	return out
}

func stringifyHeaderValue(v interface{}) string {
	return fmt.Sprintf("%v", v)
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// fetchResponseBody retrieves a response body via CDP, capping and marking
// truncation per spec.md §4.2's lazy, size-bounded body capture.
func fetchResponseBody(page *rod.Page, requestID proto.NetworkRequestID, cap int) (string, bool, error) {
	res, err := proto.NetworkGetResponseBody{RequestID: requestID}.Call(page)
	if err != nil {
		return "", false, err
	}
	body := res.Body
	if res.Base64Encoded {
		if decoded, decErr := base64.StdEncoding.DecodeString(body); decErr == nil {
			body = string(decoded)
		}
	}
	if cap > 0 && len(body) > cap {
		return body[:cap] + "\n...[truncated]", true, nil
	}
	return body, false, nil
}
