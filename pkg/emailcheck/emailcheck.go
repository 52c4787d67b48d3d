package emailcheck

import (
	"context"
	"errors"
	"net"
	"net/mail"
	"strings"
	"time"
)

var (
	ErrInvalidAddress = errors.New("invalid email address")
	ErrNoMailServer   = errors.New("email domain has no mail server")
)

type MXResolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// Checker accepts an address only when its domain publishes MX records.
type Checker struct {
	resolver MXResolver
	timeout  time.Duration
}

func NewChecker(resolver MXResolver) *Checker {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &Checker{resolver: resolver, timeout: 5 * time.Second}
}

func (c *Checker) Check(ctx context.Context, email string) error {
	domain, err := Domain(email)
	if err != nil {
		return err
	}

	lookupCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	records, err := c.resolver.LookupMX(lookupCtx, domain)
	if err != nil || len(records) == 0 {
		return ErrNoMailServer
	}
	return nil
}

// Domain returns the lowercased domain part of a syntactically valid address.
func Domain(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return "", ErrInvalidAddress
	}
	at := strings.LastIndex(addr.Address, "@")
	domain := strings.ToLower(addr.Address[at+1:])
	if domain == "" || !strings.Contains(domain, ".") {
		return "", ErrInvalidAddress
	}
	return domain, nil
}
