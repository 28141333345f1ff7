package jwtx

import "fmt"

// APISurface identifies one of the platform's REST APIs.
type APISurface int

const (
	SurfaceHousekeeping APISurface = iota + 1
	SurfaceRealmManagement
	SurfacePairing
	SurfaceAppEngine
)

var surfaceNames = map[APISurface]string{
	SurfaceHousekeeping:    "housekeeping",
	SurfaceRealmManagement: "realm-management",
	SurfacePairing:         "pairing",
	SurfaceAppEngine:       "appengine",
}

// Valid reports whether s is a known API surface.
func (s APISurface) Valid() bool {
	_, ok := surfaceNames[s]
	return ok
}

func (s APISurface) String() string {
	if name, ok := surfaceNames[s]; ok {
		return name
	}
	return fmt.Sprintf("APISurface(%d)", int(s))
}

// DefaultCredentials returns the all-access credentials an API client for s uses.
func (s APISurface) DefaultCredentials(opts ...TokenOption) Credentials {
	switch s {
	case SurfaceHousekeeping:
		return HousekeepingAllAccess(opts...)
	case SurfaceRealmManagement:
		return RealmManagementAllAccess(opts...)
	case SurfacePairing:
		return PairingAllAccess(opts...)
	case SurfaceAppEngine:
		return AppEngineAllAccess(opts...)
	}
	panic(fmt.Sprintf("jwtx: unknown API surface %d", int(s)))
}
