package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/places/debugs"
	"github.com/reusee/places/places"
)

type Module struct {
	dscope.Module
	Places places.Module
	Debugs debugs.Module
}
