package models

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goaTrip() *Trip {
	return &Trip{
		Name:   "Goa",
		Budget: 40000,
		Members: []Member{
			{Name: "You", Role: RoleOwner},
			{Name: "Rahul"},
			{Name: "Neha", Email: "neha@example.com"},
			{Name: "Amit"},
		},
	}
}

func TestTrip_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(t *Trip)
		wantErr error
	}{
		{name: "valid", mutate: func(*Trip) {}},
		{name: "unnamed", mutate: func(t *Trip) { t.Name = "" }},
		{name: "name too long", mutate: func(t *Trip) { t.Name = strings.Repeat("x", 101) }, wantErr: ErrValidation},
		{name: "negative budget", mutate: func(t *Trip) { t.Budget = -1 }, wantErr: ErrInvalidAmount},
		{name: "infinite budget", mutate: func(t *Trip) { t.Budget = math.Inf(1) }, wantErr: ErrInvalidAmount},
		{name: "bad email", mutate: func(t *Trip) { t.Members[2].Email = "neha" }, wantErr: ErrValidation},
		{name: "bad role", mutate: func(t *Trip) { t.Members[0].Role = "admin" }, wantErr: ErrValidation},
		{name: "blank member", mutate: func(t *Trip) { t.Members[1].Name = "" }, wantErr: ErrValidation},
		{name: "duplicate member", mutate: func(t *Trip) { t.Members[3].Name = "rahul" }, wantErr: ErrDuplicateMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := goaTrip()
			tt.mutate(trip)

			err := trip.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTrip_MemberNames(t *testing.T) {
	trip := goaTrip()

	assert.Equal(t, []string{"You", "Rahul", "Neha", "Amit"}, trip.MemberNames())
	assert.True(t, trip.HasMember("Neha"))
	assert.False(t, trip.HasMember("neha"))
	assert.Empty(t, (&Trip{}).MemberNames())
}

func TestTrip_CheckExpense(t *testing.T) {
	trip := goaTrip()

	require.NoError(t, trip.CheckExpense(&Expense{PaidBy: "Amit", SplitBetween: []string{"You", "Neha"}}))
	assert.ErrorIs(t, trip.CheckExpense(&Expense{PaidBy: "Priya"}), ErrUnknownMember)
	assert.ErrorIs(t, trip.CheckExpense(&Expense{PaidBy: "Amit", SplitBetween: []string{"Priya"}}), ErrUnknownMember)

	require.NoError(t, trip.CheckSettlement(&Settlement{FromMember: "Rahul", ToMember: "You"}))
	assert.ErrorIs(t, trip.CheckSettlement(&Settlement{FromMember: "Rahul", ToMember: "Priya"}), ErrUnknownMember)
}

func TestExpense_Validate(t *testing.T) {
	valid := func() *Expense {
		return &Expense{Title: "Dinner", Amount: 4000, PaidBy: "Amit", Date: "2024-03-12"}
	}

	tests := []struct {
		name    string
		mutate  func(e *Expense)
		wantErr error
	}{
		{name: "valid", mutate: func(*Expense) {}},
		{name: "zero amount", mutate: func(e *Expense) { e.Amount = 0 }, wantErr: ErrInvalidAmount},
		{name: "negative amount", mutate: func(e *Expense) { e.Amount = -10 }, wantErr: ErrInvalidAmount},
		{name: "NaN amount", mutate: func(e *Expense) { e.Amount = math.NaN() }, wantErr: ErrInvalidAmount},
		{name: "infinite amount", mutate: func(e *Expense) { e.Amount = math.Inf(1) }, wantErr: ErrInvalidAmount},
		{name: "no payer", mutate: func(e *Expense) { e.PaidBy = "" }, wantErr: ErrValidation},
		{name: "blank splitter", mutate: func(e *Expense) { e.SplitBetween = []string{"Amit", ""} }, wantErr: ErrValidation},
		{name: "bad date", mutate: func(e *Expense) { e.Date = "12/03/2024" }, wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid()
			tt.mutate(e)

			err := e.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpense_Normalize(t *testing.T) {
	e := &Expense{Amount: 10, PaidBy: "A"}
	e.Normalize()

	assert.Equal(t, DefaultCategory, e.Category)
	assert.Equal(t, DefaultCategory, e.Title)

	e = &Expense{Title: "Taxi", Category: "Travel"}
	e.Normalize()
	assert.Equal(t, "Travel", e.Category)
	assert.Equal(t, "Taxi", e.Title)
}

func TestSettlement_Validate(t *testing.T) {
	assert.NoError(t, (&Settlement{FromMember: "Rahul", ToMember: "You", Amount: 5500}).Validate())
	assert.ErrorIs(t, (&Settlement{FromMember: "Rahul", ToMember: "Rahul", Amount: 10}).Validate(), ErrValidation)
	assert.ErrorIs(t, (&Settlement{FromMember: "Rahul", ToMember: "You"}).Validate(), ErrInvalidAmount)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "12.34", want: 12.34},
		{in: " 12,34 ", want: 12.34},
		{in: "1,234.50", want: 1234.5},
		{in: "1,234", want: 1234},
		{in: "1,00,000", want: 100000},
		{in: "12,5", want: 12.5},
		{in: "1,23,45", wantErr: true},
		{in: "4000", want: 4000},
		{in: "10.005", want: 10.01},
		{in: "0", wantErr: true},
		{in: "0.004", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 12500, want: "12,500.00"},
		{in: 999, want: "999.00"},
		{in: 1234567.891, want: "1,234,567.89"},
		{in: -1234.5, want: "-1,234.50"},
		{in: 0, want: "0.00"},
		{in: math.NaN(), want: "0.00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.in))
	}
}
