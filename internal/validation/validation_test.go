package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetops/internal/apperr"
)

type booking struct {
	BusID     string  `binding:"required"`
	Customer  string  `binding:"notblank"`
	Seats     int     `binding:"gt=0"`
	Kind      string  `binding:"required,oneof=Fixed Percentage"`
	Status    *string `binding:"omitempty,oneof=Pending Accepted"`
	DriverID  string
	Conductor string `binding:"nefield=DriverID"`
}

func TestStruct(t *testing.T) {
	ok := booking{BusID: "BUS-1", Customer: "Ana", Seats: 40, Kind: "Fixed", DriverID: "EMP-1", Conductor: "EMP-2"}
	require.NoError(t, Struct(ok))

	cases := map[string]struct {
		mutate func(*booking)
		field  string
		msg    string
	}{
		"missing bus":    {func(b *booking) { b.BusID = "" }, "BusID", "is required"},
		"blank customer": {func(b *booking) { b.Customer = "  " }, "Customer", "is required"},
		"no seats":       {func(b *booking) { b.Seats = 0 }, "Seats", "must be greater than 0"},
		"bad kind":       {func(b *booking) { b.Kind = "Flat" }, "Kind", "must be one of Fixed, Percentage"},
		"bad status":     {func(b *booking) { s := "Done"; b.Status = &s }, "Status", "must be one of Pending, Accepted"},
		"same crew":      {func(b *booking) { b.Conductor = b.DriverID }, "Conductor", "must differ from DriverID"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			b := ok
			tc.mutate(&b)
			err := Struct(b)
			require.Error(t, err)
			var ve apperr.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
			assert.Equal(t, tc.msg, ve.Msg)
		})
	}
}

func TestTranslateDecodeError(t *testing.T) {
	err := Translate(errors.New(`json: unknown field "Batery"`))
	assert.True(t, apperr.IsValidation(err))
	assert.Contains(t, err.Error(), "Batery")
}
