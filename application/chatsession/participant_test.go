// application/chatsession/participant_test.go
package chatsession

import (
	"errors"
	"testing"

	"github.com/RadowanAhmed/mataim-chat-api/domain/models"
	"github.com/RadowanAhmed/mataim-chat-api/domain/types"
	"github.com/google/uuid"
)

type fakeProfiles struct {
	customers   map[uuid.UUID]*models.Customer
	restaurants map[uuid.UUID]*models.Restaurant
	drivers     map[uuid.UUID]*models.Driver
	users       map[uuid.UUID]*models.User
	err         error
}

func (f *fakeProfiles) GetCustomer(id uuid.UUID) (*models.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.customers[id]; ok {
		return c, nil
	}
	return nil, errors.New("customer not found")
}

func (f *fakeProfiles) GetRestaurant(id uuid.UUID) (*models.Restaurant, error) {
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.restaurants[id]; ok {
		return r, nil
	}
	return nil, errors.New("restaurant not found")
}

func (f *fakeProfiles) GetDriver(id uuid.UUID) (*models.Driver, error) {
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.drivers[id]; ok {
		return d, nil
	}
	return nil, errors.New("driver not found")
}

func (f *fakeProfiles) GetUser(id uuid.UUID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

func TestResolve_CustomerViewerSeesDriver(t *testing.T) {
	driverID := uuid.New()
	customerID := uuid.New()
	profiles := &fakeProfiles{
		drivers: map[uuid.UUID]*models.Driver{
			driverID: {ID: driverID, Name: "Somchai", AvatarURL: "http://img/d.png", Phone: "0812345678", VehicleType: "motorbike", Rating: 4.8},
		},
	}
	conv := &models.Conversation{ID: uuid.New(), CustomerID: &customerID, DriverID: &driverID}

	p, err := NewResolver(profiles).Resolve(conv, types.RoleCustomer)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.ID != driverID || p.Role != types.RoleDriver {
		t.Errorf("resolved %s/%s, want driver %s", p.Role, p.ID, driverID)
	}
	if p.DisplayName != "Somchai" || p.Phone != "0812345678" {
		t.Errorf("profile fields not carried over: %+v", p)
	}
	if p.VehicleType != "motorbike" || p.Rating != 4.8 {
		t.Errorf("driver extras not carried over: %+v", p)
	}
	if p.OwnerUserID != nil {
		t.Error("non-restaurant participant should not carry an owner account")
	}
}

func TestResolve_DriverViewerSeesCustomer(t *testing.T) {
	driverID := uuid.New()
	customerID := uuid.New()
	profiles := &fakeProfiles{
		customers: map[uuid.UUID]*models.Customer{
			customerID: {ID: customerID, Name: "Nok", Phone: "0890000000"},
		},
	}
	conv := &models.Conversation{ID: uuid.New(), CustomerID: &customerID, DriverID: &driverID}

	p, err := NewResolver(profiles).Resolve(conv, types.RoleDriver)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.ID != customerID || p.Role != types.RoleCustomer {
		t.Errorf("resolved %s/%s, want customer %s", p.Role, p.ID, customerID)
	}
}

func TestResolve_RestaurantCarriesOwnerForEnrichment(t *testing.T) {
	restaurantID := uuid.New()
	ownerID := uuid.New()
	customerID := uuid.New()
	profiles := &fakeProfiles{
		restaurants: map[uuid.UUID]*models.Restaurant{
			restaurantID: {ID: restaurantID, OwnerID: ownerID, Name: "Krua Thai", LogoURL: "http://img/r.png", Rating: 4.2},
		},
		users: map[uuid.UUID]*models.User{
			ownerID: {ID: ownerID, Phone: "027771234"},
		},
	}
	conv := &models.Conversation{ID: uuid.New(), CustomerID: &customerID, RestaurantID: &restaurantID}
	resolver := NewResolver(profiles)

	p, err := resolver.Resolve(conv, types.RoleCustomer)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.Role != types.RoleRestaurant {
		t.Fatalf("resolved role %s, want restaurant", p.Role)
	}
	// The restaurant row has no phone; resolution completes without it.
	if p.Phone != "" {
		t.Errorf("phone = %q before enrichment, want empty", p.Phone)
	}
	if p.OwnerUserID == nil || *p.OwnerUserID != ownerID {
		t.Fatalf("owner account not carried: %v", p.OwnerUserID)
	}

	phone, err := resolver.OwnerPhone(*p.OwnerUserID)
	if err != nil {
		t.Fatalf("owner phone: %v", err)
	}
	if phone != "027771234" {
		t.Errorf("owner phone = %q, want %q", phone, "027771234")
	}
}

func TestResolve_NoCounterpart(t *testing.T) {
	customerID := uuid.New()
	conv := &models.Conversation{ID: uuid.New(), CustomerID: &customerID}

	_, err := NewResolver(&fakeProfiles{}).Resolve(conv, types.RoleCustomer)
	if !errors.Is(err, ErrNoParticipant) {
		t.Fatalf("err = %v, want ErrNoParticipant", err)
	}
}

func TestResolve_AmbiguousCounterpart(t *testing.T) {
	customerID := uuid.New()
	restaurantID := uuid.New()
	driverID := uuid.New()
	conv := &models.Conversation{
		ID:           uuid.New(),
		CustomerID:   &customerID,
		RestaurantID: &restaurantID,
		DriverID:     &driverID,
	}

	// From the customer's perspective both the restaurant and the driver
	// are populated; the resolver refuses to guess.
	_, err := NewResolver(&fakeProfiles{}).Resolve(conv, types.RoleCustomer)
	if !errors.Is(err, ErrAmbiguousParticipant) {
		t.Fatalf("err = %v, want ErrAmbiguousParticipant", err)
	}
}

func TestResolve_ProfileFetchError(t *testing.T) {
	customerID := uuid.New()
	driverID := uuid.New()
	fetchErr := errors.New("db down")
	profiles := &fakeProfiles{err: fetchErr}
	conv := &models.Conversation{ID: uuid.New(), CustomerID: &customerID, DriverID: &driverID}

	_, err := NewResolver(profiles).Resolve(conv, types.RoleCustomer)
	if !errors.Is(err, fetchErr) {
		t.Fatalf("err = %v, want wrapped fetch error", err)
	}
}

func TestResolve_InvalidViewerRole(t *testing.T) {
	customerID := uuid.New()
	conv := &models.Conversation{ID: uuid.New(), CustomerID: &customerID}

	if _, err := NewResolver(&fakeProfiles{}).Resolve(conv, types.Role("admin")); err == nil {
		t.Fatal("expected error for unknown viewer role")
	}
	if _, err := NewResolver(&fakeProfiles{}).Resolve(nil, types.RoleCustomer); err == nil {
		t.Fatal("expected error for nil conversation")
	}
}
