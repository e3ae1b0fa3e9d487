package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"regionx/internal/regions/handler/mocks"
	"regionx/internal/regions/models"
	"regionx/pkg/domain"
	"regionx/pkg/platform/middleware/admin"
	"regionx/pkg/platform/middleware/auth"
)

type stubValidator struct{ account domain.AccountID }

func (v stubValidator) ValidateToken(token string) (*auth.JWTClaims, error) {
	if token != "good" {
		return nil, models.ErrNotOwner
	}
	return &auth.JWTClaims{Account: v.account, JTI: "jti"}, nil
}

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	regions *mocks.MockService
	router  chi.Router
	alice   domain.AccountID
	bob     domain.AccountID
	id      models.RegionID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.regions = mocks.NewMockService(s.ctrl)
	s.alice = domain.AccountID{1}
	s.bob = domain.AccountID{2}
	s.id = models.RegionID{Begin: 10, Core: 3, Mask: models.CompleteMask()}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(s.regions, logger, stubValidator{account: s.alice}, "operator").Register(s.router)
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func signed() map[string]string {
	return map[string]string{"Authorization": "Bearer good"}
}

func (s *HandlerSuite) TestGetRegion() {
	s.Run("returns the region with its record", func() {
		paid := domain.Balance(500)
		s.regions.EXPECT().Region(gomock.Any(), s.id).Return(&models.Region{
			Owner:  s.alice,
			Record: models.AvailableRecord{Record: models.RegionRecord{End: 20, Owner: s.bob, Paid: &paid}},
		}, nil)

		rec := s.do(http.MethodGet, "/regions/"+s.id.String(), nil, nil)
		s.Equal(http.StatusOK, rec.Code)

		var resp RegionResponse
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
		s.Equal(s.id.String(), resp.ID)
		s.Equal(uint32(10), resp.Begin)
		s.Equal(s.alice, resp.Owner)
		s.Equal("available", resp.Record.Status)
		s.Require().NotNil(resp.Record.End)
		s.Equal(uint32(20), *resp.Record.End)
		s.Equal(paid, *resp.Record.Paid)
	})

	s.Run("unknown regions are 404", func() {
		s.regions.EXPECT().Region(gomock.Any(), s.id).Return(nil, models.ErrUnknownRegion)
		rec := s.do(http.MethodGet, "/regions/"+s.id.String(), nil, nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("malformed ids are 400", func() {
		rec := s.do(http.MethodGet, "/regions/not-hex", nil, nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestGetAttribute() {
	s.regions.EXPECT().Attribute(gomock.Any(), s.id, "end").Return([]byte{20, 0, 0, 0}, nil)
	rec := s.do(http.MethodGet, "/regions/"+s.id.String()+"/attributes/end", nil, nil)
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"key":"end","value":"0x14000000"}`, rec.Body.String())
}

func (s *HandlerSuite) TestTransfer() {
	path := "/regions/" + s.id.String() + "/transfer"

	s.Run("signed owner transfers", func() {
		s.regions.EXPECT().Transfer(gomock.Any(), s.alice, s.id, s.bob).Return(nil)
		rec := s.do(http.MethodPost, path, map[string]string{"new_owner": s.bob.String()}, signed())
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("missing new owner is rejected before the service", func() {
		rec := s.do(http.MethodPost, path, map[string]string{}, signed())
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("locked regions are a conflict", func() {
		s.regions.EXPECT().Transfer(gomock.Any(), s.alice, s.id, s.bob).Return(models.ErrRegionLocked)
		rec := s.do(http.MethodPost, path, map[string]string{"new_owner": s.bob.String()}, signed())
		s.Equal(http.StatusConflict, rec.Code)
		s.Contains(rec.Body.String(), "region_locked")
	})

	s.Run("unsigned requests are rejected", func() {
		rec := s.do(http.MethodPost, path, map[string]string{"new_owner": s.bob.String()}, nil)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *HandlerSuite) TestRecordExtrinsics() {
	base := "/regions/" + s.id.String()

	s.Run("request record is accepted", func() {
		s.regions.EXPECT().RequestRegionRecord(gomock.Any(), s.alice, s.id).Return(nil)
		rec := s.do(http.MethodPost, base+"/request-record", nil, signed())
		s.Equal(http.StatusAccepted, rec.Code)
	})

	s.Run("request record on a set record conflicts", func() {
		s.regions.EXPECT().RequestRegionRecord(gomock.Any(), s.alice, s.id).Return(models.ErrNotUnavailable)
		rec := s.do(http.MethodPost, base+"/request-record", nil, signed())
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("drop of a live region conflicts", func() {
		s.regions.EXPECT().DropRegion(gomock.Any(), s.alice, s.id).Return(models.ErrRegionNotExpired)
		rec := s.do(http.MethodPost, base+"/drop", nil, signed())
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("burn checks the caller as owner", func() {
		s.regions.EXPECT().Burn(gomock.Any(), s.id, gomock.Any()).DoAndReturn(
			func(_ any, _ models.RegionID, owner *domain.AccountID) error {
				s.Require().NotNil(owner)
				s.Equal(s.alice, *owner)
				return models.ErrNotOwner
			})
		rec := s.do(http.MethodPost, base+"/burn", nil, signed())
		s.Equal(http.StatusForbidden, rec.Code)
	})
}

func (s *HandlerSuite) TestMint() {
	body := map[string]any{
		"begin": 10,
		"core":  3,
		"mask":  "0xffffffffffffffffffff",
		"owner": s.bob.String(),
	}

	s.Run("operator mints", func() {
		s.regions.EXPECT().Mint(gomock.Any(), s.id, s.bob).Return(nil)
		rec := s.do(http.MethodPost, "/admin/regions", body, map[string]string{admin.HeaderToken: "operator"})
		s.Equal(http.StatusCreated, rec.Code)
		s.JSONEq(`{"region_id":"`+s.id.String()+`"}`, rec.Body.String())
	})

	s.Run("short masks are rejected", func() {
		bad := map[string]any{"begin": 10, "core": 3, "mask": "0xff", "owner": s.bob.String()}
		rec := s.do(http.MethodPost, "/admin/regions", bad, map[string]string{admin.HeaderToken: "operator"})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("wrong token is rejected", func() {
		rec := s.do(http.MethodPost, "/admin/regions", body, map[string]string{admin.HeaderToken: "guess"})
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}
