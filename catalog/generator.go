package catalog

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/c360/travelstreams/travel"
)

// Catalog vocabulary for synthetic data. Mirrors the demo dataset the
// service simulates: Brazilian domestic routes and carriers.
var (
	carriers = []string{"LATAM", "GOL", "Azul", "TAM", "Avianca"}
	cities   = []string{
		"Sao Paulo", "Rio de Janeiro", "Brasilia", "Belo Horizonte",
		"Salvador", "Recife", "Fortaleza", "Manaus", "Porto Alegre",
	}
	aircraft       = []string{"Boeing 737", "Airbus A320", "Embraer E190", "Boeing 777"}
	carrierPrefix  = []string{"LA", "G3", "AD", "JJ"}
	cabinClasses   = []travel.CabinClass{travel.CabinEconomy, travel.CabinBusiness, travel.CabinFirst}
	cabinPriceMult = map[travel.CabinClass]float64{
		travel.CabinEconomy:  1.0,
		travel.CabinBusiness: 2.5,
		travel.CabinFirst:    4.0,
	}
	departureMinutes = []int{0, 15, 30, 45}
)

// Generator is a seedable synthetic dataset provider. The first
// NearTermDays days are guaranteed bookable (active, seats available)
// so demos and load tests always find results; the remainder of the
// dataset spreads over the following weeks with mixed statuses.
type Generator struct {
	Seed         int64
	Total        int       // total records; default 5000
	NearTermDays int       // guaranteed-bookable window; default 10
	Now          time.Time // dataset epoch; default time.Now()
}

// Provide generates the dataset. Identical Generator values with a
// non-zero Seed produce identical datasets; a zero Seed draws a
// time-based one.
func (g Generator) Provide() ([]travel.Flight, error) {
	total := g.Total
	if total <= 0 {
		total = 5000
	}
	nearTerm := g.NearTermDays
	if nearTerm <= 0 {
		nearTerm = 10
	}
	now := g.Now
	if now.IsZero() {
		now = time.Now()
	}

	seed := g.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))
	flights := make([]travel.Flight, 0, total)

	// Dense bookable window: 50-80 flights per day, all active with seats
	for day := 0; day < nearTerm && len(flights) < total; day++ {
		perDay := 50 + rng.Intn(31)
		for i := 0; i < perDay && len(flights) < total; i++ {
			f := g.randomFlight(rng, now, day, len(flights)+1)
			f.Status = travel.StatusActive
			f.SeatsAvailable = 5 + rng.Intn(176)
			flights = append(flights, f)
		}
	}

	// Long tail: mixed statuses strictly after the bookable window
	for len(flights) < total {
		day := nearTerm + 1 + rng.Intn(50)
		f := g.randomFlight(rng, now, day, len(flights)+1)
		f.SeatsAvailable = rng.Intn(181)
		switch rng.Intn(5) {
		case 3:
			f.Status = travel.StatusCancelled
		case 4:
			f.Status = travel.StatusFull
		default:
			f.Status = travel.StatusActive
		}
		flights = append(flights, f)
	}

	return flights, nil
}

// randomFlight builds one record, leaving status and seats for the
// caller to assign.
func (g Generator) randomFlight(rng *rand.Rand, now time.Time, day, seq int) travel.Flight {
	origin := cities[rng.Intn(len(cities))]
	destination := origin
	for destination == origin {
		destination = cities[rng.Intn(len(cities))]
	}

	date := now.AddDate(0, 0, day)
	depHour := 6 + rng.Intn(17) // 06:00 through 22:45
	depMinute := departureMinutes[rng.Intn(len(departureMinutes))]
	duration := 60 + rng.Intn(421) // 1h to 8h

	departure := time.Date(date.Year(), date.Month(), date.Day(), depHour, depMinute, 0, 0, date.Location())
	arrival := departure.Add(time.Duration(duration) * time.Minute)

	cabin := cabinClasses[rng.Intn(len(cabinClasses))]
	price := (150.0 + rng.Float64()*650.0) * cabinPriceMult[cabin]

	return travel.Flight{
		ID:              fmt.Sprintf("V%04d", seq),
		Origin:          origin,
		Destination:     destination,
		Date:            date.Format("2006-01-02"),
		Departure:       departure.Format("15:04"),
		Arrival:         arrival.Format("15:04"),
		Price:           float64(int(price*100)) / 100,
		Carrier:         carriers[rng.Intn(len(carriers))],
		Number:          fmt.Sprintf("%s%d", carrierPrefix[rng.Intn(len(carrierPrefix))], 1000+rng.Intn(9000)),
		Cabin:           cabin,
		Aircraft:        aircraft[rng.Intn(len(aircraft))],
		DurationMinutes: duration,
	}
}
