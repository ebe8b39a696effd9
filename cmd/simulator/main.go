package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// Simulator drives tickets through the maintenance workflow against a running API.
type Simulator struct {
	apiURL     string
	client     *http.Client
	rng        *rand.Rand
	rejectRate float64
	run        string

	creator    string
	supervisor string
	vendor     string
	purchaser  string
	vendorID   string
}

type account struct {
	Token string `json:"token"`
	User  struct {
		ID string `json:"id"`
	} `json:"user"`
}

type entity struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type invoiceResult struct {
	Ticket  entity `json:"ticket"`
	Invoice entity `json:"invoice"`
}

// statusError is returned for responses outside the expected status.
type statusError struct {
	Method, Path string
	Status       int
	Body         string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// NewSimulator creates a simulator for apiURL. run namespaces the accounts and
// buses it creates.
func NewSimulator(apiURL string, seed int64, rejectRate float64) *Simulator {
	return &Simulator{
		apiURL:     apiURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		rng:        rand.New(rand.NewSource(seed)),
		rejectRate: rejectRate,
		run:        strconv.FormatInt(seed, 36),
	}
}

func (s *Simulator) call(method, path, token string, body any, want int, out any) error {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		buf = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.apiURL+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != want {
		return &statusError{Method: method, Path: path, Status: resp.StatusCode, Body: string(data)}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (s *Simulator) email(role string) string {
	return fmt.Sprintf("sim-%s-%s@example.com", s.run, role)
}

func (s *Simulator) register(role string) (account, error) {
	var acc account
	err := s.call(http.MethodPost, "/auth/register", "", map[string]string{
		"name":     "Simulated " + role,
		"email":    s.email(role),
		"password": "simulator",
		"role":     role,
	}, http.StatusCreated, &acc)
	return acc, err
}

// Setup registers one account per role and a vendor created by the service creator.
func (s *Simulator) Setup() error {
	for role, token := range map[string]*string{
		"serviceCreator":  &s.creator,
		"supervisor":      &s.supervisor,
		"purchaseManager": &s.purchaser,
	} {
		acc, err := s.register(role)
		if err != nil {
			return fmt.Errorf("register %s: %w", role, err)
		}
		*token = acc.Token
	}

	vendorEmail := s.email("vendor")
	err := s.call(http.MethodPost, "/vendors/create", s.creator, map[string]string{
		"name":     "Simulated garage",
		"email":    vendorEmail,
		"password": "simulator",
	}, http.StatusCreated, nil)
	if err != nil {
		return fmt.Errorf("create vendor: %w", err)
	}
	var acc account
	if err := s.call(http.MethodPost, "/auth/login", "", map[string]string{
		"email":    vendorEmail,
		"password": "simulator",
	}, http.StatusOK, &acc); err != nil {
		return fmt.Errorf("vendor login: %w", err)
	}
	s.vendor, s.vendorID = acc.Token, acc.User.ID

	log.WithFields(log.Fields{"run": s.run, "vendor_id": s.vendorID}).Info("Registered simulation accounts")
	return nil
}

// CreateBus registers bus number n assigned to the simulated vendor.
func (s *Simulator) CreateBus(n int) (string, error) {
	makes := []string{"Volvo", "Tata", "Ashok Leyland", "Scania"}
	var bus entity
	err := s.call(http.MethodPost, "/bus/create", s.supervisor, map[string]any{
		"chassisNumber":      fmt.Sprintf("SIM-%s-CH-%d", s.run, n),
		"fleetNumber":        fmt.Sprintf("SIM-%s-F-%d", s.run, n),
		"registrationNumber": fmt.Sprintf("SIM-%s-R-%d", s.run, n),
		"make":               makes[s.rng.Intn(len(makes))],
		"model":              "City",
		"year":               2015 + s.rng.Intn(10),
		"engine":             map[string]float64{"serviceKm": 15000, "currentKm": float64(s.rng.Intn(20000))},
		"vendorId":           s.vendorID,
	}, http.StatusCreated, &bus)
	if err != nil {
		return "", fmt.Errorf("create bus: %w", err)
	}
	log.WithField("bus_id", bus.ID).Info("Created bus")
	return bus.ID, nil
}

// RunTicket takes one ticket on busID from creation to completion. Invoices
// are rejected and resubmitted at the simulator's reject rate.
func (s *Simulator) RunTicket(busID string) (string, error) {
	serviceTypes := []string{"minor", "major", "other"}
	var ticket entity
	if err := s.call(http.MethodPost, "/tickets/create", s.creator, map[string]string{
		"busId":       busID,
		"serviceType": serviceTypes[s.rng.Intn(len(serviceTypes))],
		"description": "scheduled maintenance",
	}, http.StatusCreated, &ticket); err != nil {
		return "", fmt.Errorf("create ticket: %w", err)
	}
	id := ticket.ID
	fields := log.Fields{"ticket_id": id, "bus_id": busID}
	log.WithFields(fields).Info("Created ticket")

	if err := s.call(http.MethodPut, "/tickets/approve/"+id, s.supervisor, nil, http.StatusOK, nil); err != nil {
		return id, fmt.Errorf("approve: %w", err)
	}
	if err := s.call(http.MethodPut, "/tickets/acknowledge/"+id, s.vendor, nil, http.StatusOK, nil); err != nil {
		return id, fmt.Errorf("acknowledge: %w", err)
	}

	for attempt := 1; ; attempt++ {
		var submitted invoiceResult
		amount := float64(500+s.rng.Intn(5000)) + float64(s.rng.Intn(100))/100
		if err := s.call(http.MethodPut, "/tickets/invoice/"+id, s.vendor, map[string]any{
			"amount":      amount,
			"description": fmt.Sprintf("invoice attempt %d", attempt),
		}, http.StatusCreated, &submitted); err != nil {
			return id, fmt.Errorf("submit invoice: %w", err)
		}
		log.WithFields(fields).WithFields(log.Fields{"invoice_id": submitted.Invoice.ID, "amount": amount}).Info("Submitted invoice")

		decision := "accept"
		if attempt < 3 && s.rng.Float64() < s.rejectRate {
			decision = "reject"
		}
		if err := s.call(http.MethodPut, "/invoices/"+submitted.Invoice.ID+"/"+decision, s.supervisor, nil, http.StatusOK, nil); err != nil {
			return id, fmt.Errorf("%s invoice: %w", decision, err)
		}
		log.WithFields(fields).WithField("decision", decision).Info("Invoice decided")
		if decision == "accept" {
			break
		}
	}

	if err := s.call(http.MethodPut, "/tickets/complete/"+id, s.vendor, nil, http.StatusOK, nil); err != nil {
		return id, fmt.Errorf("complete: %w", err)
	}
	log.WithFields(fields).Info("Completed ticket")
	return id, nil
}

// Dashboard fetches the purchase manager's dashboard.
func (s *Simulator) Dashboard() (map[string]any, error) {
	var d map[string]any
	err := s.call(http.MethodGet, "/users/dashboard", s.purchaser, nil, http.StatusOK, &d)
	return d, err
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			return n
		}
	}
	return def
}

func main() {
	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}
	buses := envInt("SIM_BUSES", 3)
	tickets := envInt("SIM_TICKETS_PER_BUS", 2)
	rejectRate := 0.3
	if v := os.Getenv("SIM_REJECT_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			rejectRate = f
		}
	}

	log.WithFields(log.Fields{
		"api_url":         apiURL,
		"buses":           buses,
		"tickets_per_bus": tickets,
		"reject_rate":     rejectRate,
	}).Info("Starting maintenance simulation")

	sim := NewSimulator(apiURL, time.Now().UnixNano(), rejectRate)
	if err := sim.Setup(); err != nil {
		log.WithError(err).Fatal("Setup failed")
	}

	completed := 0
	for b := 1; b <= buses; b++ {
		busID, err := sim.CreateBus(b)
		if err != nil {
			log.WithError(err).Error("Failed to create bus")
			continue
		}
		for i := 0; i < tickets; i++ {
			if id, err := sim.RunTicket(busID); err != nil {
				log.WithError(err).WithField("ticket_id", id).Error("Ticket run failed")
				continue
			}
			completed++
		}
	}

	d, err := sim.Dashboard()
	if err != nil {
		log.WithError(err).Error("Failed to fetch dashboard")
	}
	log.WithFields(log.Fields{"completed": completed, "dashboard": d}).Info("Simulation finished")
}
