// Package seed fills a fresh marketplace with demo students, listings and
// requests.  Everything goes through the service so the generated data
// obeys the same rules as real traffic.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/iliyamo/campus-connect/internal/model"
	"github.com/iliyamo/campus-connect/internal/service"
)

// Options sizes the demo data.  The same Seed yields the same data.
type Options struct {
	Users           int
	ListingsPerUser int
	RequestChance   int // percent of listings that receive a request
	Password        string
	Seed            int64
}

// Result counts what was created.
type Result struct {
	Users    int
	Skipped  int
	Listings int
	Requests int
}

var (
	itemsByCategory = map[string][]string{
		"Books":       {"Calculus Textbook", "Organic Chemistry Vol. 2", "Intro to Algorithms", "Linear Algebra Done Right", "Microeconomics Reader"},
		"Electronics": {"Arduino Starter Kit", "Graphing Calculator", "USB-C Hub", "Noise Cancelling Headphones", "Raspberry Pi 4"},
		"Notes":       {"Physics 101 Notes", "Data Structures Notes", "Thermodynamics Summary", "Statistics Cheat Sheet"},
		"Sports":      {"Badminton Racket", "Football", "Yoga Mat", "Cricket Bat", "Table Tennis Paddles"},
		"Other":       {"Lab Coat", "Drawing Board", "Desk Lamp", "Umbrella", "Bicycle Lock"},
	}
	conditions  = []string{"New", "Like New", "Good", "Fair"}
	departments = []string{"CS", "EE", "ME", "Civil", "BBA", "Physics", "Mathematics"}
)

// Run creates opts.Users students, each listing opts.ListingsPerUser items,
// and lets other students request a share of them.  Accounts whose email
// already exists are skipped.
func Run(ctx context.Context, svc *service.Marketplace, opts Options) (Result, error) {
	var res Result
	if opts.Password == "" {
		opts.Password = "password123"
	}
	f := gofakeit.New(opts.Seed)

	users := make([]model.UserView, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		first, last := f.FirstName(), f.LastName()
		u, err := svc.CreateUser(ctx, service.NewUser{
			FullName: first + " " + last,
			Email:    fmt.Sprintf("%s.%s.%d@campus.edu", slug(first), slug(last), i+1),
			Password: opts.Password,
			Role:     model.RoleStudent,
		})
		if errors.Is(err, service.ErrDuplicateEntry) {
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("seed user %d: %w", i+1, err)
		}
		users = append(users, u)
	}
	res.Users = len(users)

	for _, owner := range users {
		for j := 0; j < opts.ListingsPerUser; j++ {
			r, err := svc.CreateResource(ctx, owner.ID, listing(f))
			if err != nil {
				return res, fmt.Errorf("seed listing for user %d: %w", owner.ID, err)
			}
			res.Listings++

			if len(users) < 2 || f.Number(1, 100) > opts.RequestChance {
				continue
			}
			requester := users[f.Number(0, len(users)-1)]
			if requester.ID == owner.ID {
				continue
			}
			_, err = svc.SubmitRequest(ctx, service.SubmitInput{
				RequesterID: requester.ID,
				ResourceID:  r.ID,
				PhoneNumber: f.Phone(),
				Department:  f.RandomString(departments),
			})
			if err != nil {
				return res, fmt.Errorf("seed request for listing %d: %w", r.ID, err)
			}
			res.Requests++
		}
	}
	return res, nil
}

func listing(f *gofakeit.Faker) service.NewResource {
	category := f.RandomString(model.Categories)
	in := service.NewResource{
		Title:         f.RandomString(itemsByCategory[category]),
		Category:      category,
		ItemCondition: f.RandomString(conditions),
		OwnershipType: model.OwnershipSell,
		Description:   f.Sentence(10),
	}
	if f.Bool() {
		in.OwnershipType = model.OwnershipShare
	} else {
		in.Price = math.Round(f.Price(2, 120)*100) / 100
	}
	return in
}

func slug(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, strings.ToLower(s))
}
