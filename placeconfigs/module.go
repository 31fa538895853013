package placeconfigs

import (
	"github.com/reusee/dscope"
	"github.com/reusee/places/logs"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}
