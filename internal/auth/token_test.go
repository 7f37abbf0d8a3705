package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/omgplay/arcade/internal/auth"
	. "github.com/smartystreets/goconvey/convey"
)

func TestIssuer(t *testing.T) {
	Convey("Given a token issuer", t, func() {
		issuer := auth.NewIssuer("test-secret")

		Convey("When minting and verifying a token", func() {
			token, err := issuer.Mint("user-123")

			Convey("Then the subject round-trips", func() {
				So(err, ShouldBeNil)
				So(token, ShouldNotBeEmpty)
				sub, err := issuer.Verify(token)
				So(err, ShouldBeNil)
				So(sub, ShouldEqual, "user-123")
			})
		})

		Convey("When verifying a token signed with another secret", func() {
			other := auth.NewIssuer("other-secret")
			token, err := other.Mint("user-123")
			So(err, ShouldBeNil)

			Convey("Then verification fails", func() {
				_, err := issuer.Verify(token)
				So(errors.Is(err, auth.ErrInvalidToken), ShouldBeTrue)
			})
		})

		Convey("When verifying garbage", func() {
			_, err := issuer.Verify("not-a-token")

			Convey("Then verification fails", func() {
				So(errors.Is(err, auth.ErrInvalidToken), ShouldBeTrue)
			})
		})

		Convey("When the token has expired", func() {
			past := time.Now().Add(-48 * time.Hour)
			stale := auth.NewIssuer("test-secret", auth.WithClock(func() time.Time { return past }))
			token, err := stale.Mint("user-123")
			So(err, ShouldBeNil)

			Convey("Then verification against the real clock fails", func() {
				_, err := issuer.Verify(token)
				So(errors.Is(err, auth.ErrInvalidToken), ShouldBeTrue)
			})
		})

		Convey("When a custom TTL keeps the token alive", func() {
			longLived := auth.NewIssuer("test-secret", auth.WithTTL(30*24*time.Hour),
				auth.WithClock(func() time.Time { return time.Now().Add(-48 * time.Hour) }))
			token, err := longLived.Mint("user-123")
			So(err, ShouldBeNil)

			Convey("Then it still verifies", func() {
				sub, err := issuer.Verify(token)
				So(err, ShouldBeNil)
				So(sub, ShouldEqual, "user-123")
			})
		})
	})
}
