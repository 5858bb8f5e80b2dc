package domainerrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite covers the error primitives shared by the guard, the
// invalidator and the HTTP layer.
//
// Justification: rejection codes travel from stores through services to the
// handler. A wrap that loses the original code turns a 429 into a 500.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestError() {
	s.Equal("daily quota exhausted", (&Error{Code: CodeQuotaExceeded, Message: "daily quota exhausted"}).Error())
	s.Equal("user_blocked", (&Error{Code: CodeUserBlocked}).Error())
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("keeps the code of an inner domain error", func() {
		inner := New(CodeRateLimitExceeded, "burst window full")
		err := Wrap(inner, CodeInternal, "admission failed")

		s.Equal(CodeRateLimitExceeded, CodeOf(err))
		s.Equal("admission failed", err.Error())
		s.ErrorIs(err, inner)
	})

	s.Run("applies the given code to foreign errors", func() {
		err := Wrap(context.DeadlineExceeded, CodeTimeout, "invalidation cancelled")

		s.Equal(CodeTimeout, CodeOf(err))
		s.ErrorIs(err, context.DeadlineExceeded)
	})

	s.Run("survives fmt wrapping", func() {
		err := fmt.Errorf("block store: %w", New(CodeInternal, "redis unavailable"))
		s.True(HasCode(err, CodeInternal))
	})
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	err := Wrap(errors.New("dial tcp: refused"), CodeInvalidationFailed, "tag purge failed")

	s.ErrorIs(err, &Error{Code: CodeInvalidationFailed})
	s.NotErrorIs(err, &Error{Code: CodeTimeout})
	s.False((&Error{Code: CodeNotFound}).Is(errors.New("not_found")))
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.True(HasCode(New(CodeUserBlocked, "blocked"), CodeUserBlocked))
	s.False(HasCode(New(CodeUserBlocked, "blocked"), CodeForbidden))
	s.False(HasCode(errors.New("blocked"), CodeUserBlocked))
	s.False(HasCode(nil, CodeUserBlocked))
}

func (s *DomainErrorsSuite) TestCodeOf() {
	s.Equal(CodeQuotaExceeded, CodeOf(Wrap(New(CodeQuotaExceeded, "weekly"), CodeInternal, "rejected")))
	s.Equal(CodeInternal, CodeOf(errors.New("boom")))
}
