package swagger_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/omgplay/arcade/internal/adapters/http/swagger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegister(t *testing.T) {
	Convey("Given registered documentation routes", t, func() {
		mux := http.NewServeMux()
		swagger.Register(context.Background(), mux)

		Convey("When fetching the OpenAPI spec", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

			Convey("Then the embedded document is served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldContainSubstring, "yaml")
				So(rec.Body.String(), ShouldContainSubstring, "openapi:")
				So(rec.Body.String(), ShouldContainSubstring, "/api/tournament/submit")
			})
		})

		Convey("When fetching the docs page", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api-docs", nil))

			Convey("Then the HTML shell is served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(strings.Contains(rec.Body.String(), "redoc"), ShouldBeTrue)
			})
		})
	})
}
