package bankledger

import "time"

// SetClock replaces the wall clock of a service built by NewService.
func SetClock(svc Service, now func() time.Time) {
	svc.(*serviceImpl).now = now
}

// SetEndpointClock replaces the clock used by JSONEndpoint.Transfers.
func SetEndpointClock(j *JSONEndpoint, now func() time.Time) {
	j.now = now
}
