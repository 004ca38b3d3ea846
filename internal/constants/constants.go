// Package constants defines application-wide constants and version information.
package constants

import "runtime"

// Version holds the application version information
const Version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

// APIPrefix is the path prefix shared by every JSON endpoint
const APIPrefix = "/api/v1.0"

// DefaultMostActiveStation is the station served by the tobs endpoint when
// the configuration does not name one.
const DefaultMostActiveStation = "USC00519281"

// DateLayout is the layout of every observation date
const DateLayout = "2006-01-02"
