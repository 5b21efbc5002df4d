package config

import "time"

// timeNow is a package-level variable for testability.
// Tests can replace this to control history timestamps.
var timeNow = time.Now
