// Package classify maps a raw (exit status, output) pair from the remote
// target onto a result status using an ordered rule table.
package classify

import (
	"fmt"
	"strings"

	"github.com/starry-os/starry-test-harness/internal/result"
)

// Kind is the outcome class a rule assigns.
type Kind string

const (
	KindCrash                Kind = "crash"
	KindTransportUnavailable Kind = "transport_unavailable"
	KindPass                 Kind = "pass"
	KindFail                 Kind = "fail"
	KindSkip                 Kind = "skip"
)

// Status returns the result status a verdict of this kind carries.
func (k Kind) Status() result.Status {
	switch k {
	case KindPass:
		return result.StatusPass
	case KindSkip, KindTransportUnavailable:
		return result.StatusSkip
	default:
		return result.StatusFail
	}
}

// Status codes and output signatures reported by the remote transport.
const (
	StatusConnectionLost = 254
	StatusConnectFailed  = 255

	SignatureConnectionLost = "Connection lost"
	SignatureConnectFailed  = "Failed to connect"
)

// Rule is one row of the table. Rules are evaluated top to bottom and the
// first match decides.
type Rule struct {
	Name  string
	Match func(status int, output string) bool
	Kind  Kind
}

// Verdict is the outcome of classifying one invocation.
type Verdict struct {
	Kind   Kind
	Rule   string
	Status result.Status
	Reason string
}

// Classifier holds an ordered rule table.
type Classifier struct {
	transport []Rule
	domain    []Rule
	success   Rule
}

// Crash matches a target that died or dropped the session mid-command.
var Crash = Rule{
	Name: "crash",
	Match: func(status int, output string) bool {
		return status == StatusConnectionLost || strings.Contains(output, SignatureConnectionLost)
	},
	Kind: KindCrash,
}

// TransportUnavailable matches a target that could not be reached at all.
var TransportUnavailable = Rule{
	Name: "transport-unavailable",
	Match: func(status int, output string) bool {
		return status == StatusConnectFailed && strings.Contains(output, SignatureConnectFailed)
	},
	Kind: KindTransportUnavailable,
}

// Success matches a zero exit status.
var Success = Rule{
	Name:  "success",
	Match: func(status int, _ string) bool { return status == 0 },
	Kind:  KindPass,
}

// Default returns the base table: crash, transport-unavailable, success,
// then a failing fallback.
func Default() *Classifier {
	return &Classifier{
		transport: []Rule{Crash, TransportUnavailable},
		success:   Success,
	}
}

// With returns a copy of c with rules inserted after the transport rules and
// before success. A crash therefore always wins over a domain rule.
func (c *Classifier) With(rules ...Rule) *Classifier {
	domain := make([]Rule, 0, len(c.domain)+len(rules))
	domain = append(domain, c.domain...)
	domain = append(domain, rules...)
	return &Classifier{transport: c.transport, domain: domain, success: c.success}
}

// Rules returns the table in evaluation order, without the fallback.
func (c *Classifier) Rules() []Rule {
	rules := make([]Rule, 0, len(c.transport)+len(c.domain)+1)
	rules = append(rules, c.transport...)
	rules = append(rules, c.domain...)
	return append(rules, c.success)
}

// Classify evaluates the table against status and output.
func (c *Classifier) Classify(status int, output string) Verdict {
	for _, rule := range c.Rules() {
		if rule.Match(status, output) {
			return Verdict{
				Kind:   rule.Kind,
				Rule:   rule.Name,
				Status: rule.Kind.Status(),
				Reason: reason(rule.Kind, status, output),
			}
		}
	}
	return Verdict{
		Kind:   KindFail,
		Rule:   "fallback",
		Status: result.StatusFail,
		Reason: reason(KindFail, status, output),
	}
}

func reason(k Kind, status int, output string) string {
	switch k {
	case KindPass:
		return ""
	case KindCrash:
		return fmt.Sprintf("target crashed (status %d): %s", status, output)
	case KindTransportUnavailable:
		return fmt.Sprintf("target unreachable: %s", output)
	default:
		return fmt.Sprintf("status %d: %s", status, output)
	}
}
