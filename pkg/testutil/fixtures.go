package testutil

import (
	"github.com/google/uuid"
)

// Applicants of the default seed directory.
const (
	ApplicantWithDebt = "49002010965"
	ApplicantSegment1 = "49002010976" // modifier 100
	ApplicantSegment2 = "49002010987" // modifier 300
	ApplicantSegment3 = "49002010998" // modifier 1000
	ApplicantLowLimit = "49002010999" // modifier 30
	UnknownApplicant  = "38001010000"
)

// TestRequestID is a fixed, well-formed X-Request-ID.
var TestRequestID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
