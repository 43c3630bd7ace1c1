package router

import (
	"net/http"

	"github.com/patric-chuzhbe/favaddr/internal/models"
)

// PostAddresses geocodes searchWord and stores the address:
// POST /addresses {"searchWord","name","description"}.
func (router *Router) PostAddresses(response http.ResponseWriter, request *http.Request) {
	usr, ok := userFromRequest(response, request)
	if !ok {
		return
	}
	withBodyLimit(response, request)

	var body models.CreateAddressRequest
	if err := decodeJSON(request, &body, router.validate); err != nil {
		router.writeError(response, request, err)
		return
	}

	address, err := router.addresses.Create(request.Context(), usr.ID, body.Name, body.SearchWord, body.Description)
	if err != nil {
		router.writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, models.AddressResponse{Item: address})
}

func (router *Router) GetAddresses(response http.ResponseWriter, request *http.Request) {
	usr, ok := userFromRequest(response, request)
	if !ok {
		return
	}

	addresses, err := router.addresses.List(request.Context(), usr.ID)
	if err != nil {
		router.writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, models.AddressesResponse{Items: addresses})
}

// PostAddressesSearches returns the addresses within radius km of from:
// POST /addresses/searches {"radius","from":{"lat","lng"}}.
func (router *Router) PostAddressesSearches(response http.ResponseWriter, request *http.Request) {
	usr, ok := userFromRequest(response, request)
	if !ok {
		return
	}
	withBodyLimit(response, request)

	var body models.SearchAddressesRequest
	if err := decodeJSON(request, &body, router.validate); err != nil {
		router.writeError(response, request, err)
		return
	}

	addresses, err := router.addresses.Search(
		request.Context(),
		usr.ID,
		*body.Radius,
		models.Coordinate{Lat: *body.From.Lat, Lng: *body.From.Lng},
	)
	if err != nil {
		router.writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, models.AddressesResponse{Items: addresses})
}

// PutAddress renames or re-describes an address: PUT /addresses/{id}.
func (router *Router) PutAddress(response http.ResponseWriter, request *http.Request) {
	usr, ok := userFromRequest(response, request)
	if !ok {
		return
	}

	addressID, err := addressIDFromRequest(request)
	if err != nil {
		router.writeError(response, request, err)
		return
	}
	withBodyLimit(response, request)

	var body models.UpdateAddressRequest
	if err := decodeJSON(request, &body, router.validate); err != nil {
		router.writeError(response, request, err)
		return
	}

	address, err := router.addresses.Update(
		request.Context(),
		usr.ID,
		addressID,
		models.AddressPatch{Name: body.Name, Description: body.Description},
	)
	if err != nil {
		router.writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, models.AddressResponse{Item: address})
}

func (router *Router) DeleteAddress(response http.ResponseWriter, request *http.Request) {
	usr, ok := userFromRequest(response, request)
	if !ok {
		return
	}

	addressID, err := addressIDFromRequest(request)
	if err != nil {
		router.writeError(response, request, err)
		return
	}

	if err := router.addresses.Delete(request.Context(), usr.ID, addressID); err != nil {
		router.writeError(response, request, err)
		return
	}

	response.WriteHeader(http.StatusNoContent)
}
