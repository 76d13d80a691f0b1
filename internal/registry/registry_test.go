package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetops/internal/cache"
)

func TestDecodeListShapes(t *testing.T) {
	cases := map[string]string{
		"bare":    `[{"employeeNumber":"E1","firstName":"Ana"}]`,
		"data":    `{"data":[{"employeeNumber":"E1","firstName":"Ana"}]}`,
		"nested":  `{"data":{"items":[{"employeeNumber":"E1","firstName":"Ana"}]}}`,
		"wrapped": `{"employees":[{"employeeNumber":"E1","firstName":"Ana"}],"total":1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := decodeList[Employee]([]byte(body))
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "E1", got[0].EmployeeNumber)
		})
	}

	_, err := decodeList[Employee]([]byte(`{"message":"ok"}`))
	assert.Error(t, err)
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Ana Cruz", Employee{FirstName: "Ana", LastName: " Cruz "}.FullName())
	assert.Equal(t, "Ana M Cruz", Employee{FirstName: "Ana", MiddleName: "M", LastName: "Cruz"}.FullName())
}

func TestClientCachesAndDirectoryDegrades(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/drivers":
			hits++
			w.Write([]byte(`{"data":[{"employeeNumber":"D1","firstName":"Jose","lastName":"Rizal"}]}`))
		case "/buses":
			w.Write([]byte(`[{"busId":"BUS-1","plateNumber":"ABC 123"}]`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	c := cache.New(cache.NewMemoryStore(time.Minute), time.Minute, time.Second)
	client := NewClient(Config{
		DriverURL:    srv.URL + "/drivers",
		ConductorURL: srv.URL + "/conductors",
		BusURL:       srv.URL + "/buses",
		Timeout:      time.Second,
	}, srv.Client(), c)

	ctx := context.Background()
	_, err := client.Conductors(ctx)
	assert.Error(t, err)

	dir := NewDirectory(client)
	emps := dir.Employees(ctx)
	require.Contains(t, emps, "D1")
	assert.Equal(t, "Jose Rizal", emps["D1"].FullName())

	dir.Employees(ctx)
	assert.Equal(t, 1, hits, "second lookup served from cache")

	assert.Equal(t, "ABC 123", dir.Buses(ctx)["BUS-1"].PlateNumber)
}

func TestDirectoryWithoutRegistry(t *testing.T) {
	var dir *Directory
	assert.Empty(t, dir.Employees(context.Background()))
	assert.Empty(t, NewDirectory(NewClient(Config{}, nil, nil)).Buses(context.Background()))
}
