package component

import "image/color"

// Sky describes the sky box of the active map.
type Sky struct {
	Preset    string
	Size      float64
	Latitude  float64
	Longitude float64
	// DayLength is the length of a simulated day in seconds.
	DayLength float64
	Distance  float64
	Active    bool
}

var SkyComponent = NewComponent[Sky]()

type AmbientLight struct {
	Color      color.NRGBA
	Brightness float64
}

var AmbientLightComponent = NewComponent[AmbientLight]()
