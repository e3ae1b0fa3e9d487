package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"regionx/internal/market/handler/mocks"
	"regionx/internal/market/models"
	regionmodels "regionx/internal/regions/models"
	"regionx/pkg/domain"
	"regionx/pkg/platform/middleware/auth"
)

type stubValidator struct{ account domain.AccountID }

func (v stubValidator) ValidateToken(token string) (*auth.JWTClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &auth.JWTClaims{Account: v.account}, nil
}

type MarketHandlerSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	market *mocks.MockService
	router chi.Router
	alice  domain.AccountID
	bob    domain.AccountID
	id     regionmodels.RegionID
}

func TestMarketHandlerSuite(t *testing.T) {
	suite.Run(t, new(MarketHandlerSuite))
}

func (s *MarketHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.market = mocks.NewMockService(s.ctrl)
	s.alice = domain.AccountID{1}
	s.bob = domain.AccountID{2}
	s.id = regionmodels.RegionID{Begin: 4, Core: 1, Mask: regionmodels.CompleteMask()}

	s.router = chi.NewRouter()
	New(s.market, slog.New(slog.NewTextHandler(io.Discard, nil)), stubValidator{account: s.alice}).Register(s.router)
}

func (s *MarketHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *MarketHandlerSuite) do(method, path, body string, signed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if signed {
		req.Header.Set("Authorization", "Bearer good")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *MarketHandlerSuite) TestGetListing() {
	path := "/market/listings/" + s.id.String()

	s.Run("includes the current price", func() {
		s.market.EXPECT().Listing(gomock.Any(), s.id).Return(&models.Listing{
			Seller: s.alice, TimeslicePrice: 10, SaleRecipient: s.bob,
		}, nil)
		s.market.EXPECT().CalculateRegionPrice(gomock.Any(), s.id).Return(domain.Balance(70), nil)

		rec := s.do(http.MethodGet, path, "", false)
		s.Equal(http.StatusOK, rec.Code)
		var resp ListingResponse
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
		s.Equal(domain.Balance(70), resp.CurrentPrice)
		s.Equal(s.bob, resp.SaleRecipient)
	})

	s.Run("unlisted regions are 404", func() {
		s.market.EXPECT().Listing(gomock.Any(), s.id).Return(nil, models.ErrNotListed)
		rec := s.do(http.MethodGet, path, "", false)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *MarketHandlerSuite) TestList() {
	s.Run("lists with the default recipient", func() {
		s.market.EXPECT().ListRegion(gomock.Any(), s.alice, s.id, domain.Balance(10), nil).Return(nil)
		body := `{"region_id":"` + s.id.String() + `","timeslice_price":10}`
		rec := s.do(http.MethodPost, "/market/listings", body, true)
		s.Equal(http.StatusCreated, rec.Code)
	})

	s.Run("passes an explicit recipient", func() {
		s.market.EXPECT().ListRegion(gomock.Any(), s.alice, s.id, domain.Balance(10), &s.bob).Return(nil)
		body := `{"region_id":"` + s.id.String() + `","timeslice_price":10,"sale_recipient":"` + s.bob.String() + `"}`
		rec := s.do(http.MethodPost, "/market/listings", body, true)
		s.Equal(http.StatusCreated, rec.Code)
	})

	s.Run("requires a price", func() {
		body := `{"region_id":"` + s.id.String() + `"}`
		rec := s.do(http.MethodPost, "/market/listings", body, true)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("rejects bad region ids", func() {
		rec := s.do(http.MethodPost, "/market/listings", `{"region_id":"0x12","timeslice_price":1}`, true)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("rejects unsigned listing", func() {
		rec := s.do(http.MethodPost, "/market/listings", `{}`, false)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *MarketHandlerSuite) TestUnlistAndUpdate() {
	path := "/market/listings/" + s.id.String()

	s.market.EXPECT().UnlistRegion(gomock.Any(), s.alice, s.id).Return(models.ErrNotAllowed)
	s.Equal(http.StatusForbidden, s.do(http.MethodDelete, path, "", true).Code)

	s.market.EXPECT().UpdateRegionPrice(gomock.Any(), s.alice, s.id, domain.Balance(25)).Return(nil)
	s.Equal(http.StatusNoContent, s.do(http.MethodPost, path+"/price", `{"timeslice_price":25}`, true).Code)
}

func (s *MarketHandlerSuite) TestPurchase() {
	path := "/market/listings/" + s.id.String() + "/purchase"

	s.Run("returns the paid price", func() {
		s.market.EXPECT().PurchaseRegion(gomock.Any(), s.alice, s.id, domain.Balance(100)).Return(domain.Balance(80), nil)
		rec := s.do(http.MethodPost, path, `{"max_price":100}`, true)
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"region_id":"`+s.id.String()+`","price":80}`, rec.Body.String())
	})

	s.Run("price above the bound conflicts", func() {
		s.market.EXPECT().PurchaseRegion(gomock.Any(), s.alice, s.id, domain.Balance(1)).Return(domain.Balance(0), models.ErrPriceTooHigh)
		rec := s.do(http.MethodPost, path, `{"max_price":1}`, true)
		s.Equal(http.StatusConflict, rec.Code)
		s.Contains(rec.Body.String(), "price_too_high")
	})

	s.Run("requires a bound", func() {
		s.Equal(http.StatusBadRequest, s.do(http.MethodPost, path, `{}`, true).Code)
	})
}
