// Package catalog holds the static lookup tables used by the task forms:
// equipment types, brands and models, depot locations, zones, states and
// task kinds.
package catalog

import (
	"slices"
	"sort"
	"strings"
)

// Equipment types offered in the type select.
const (
	TypeInterruptor     = "INTERRUPTOR"
	TypeReconectador    = "RECONECTADOR"
	TypeSeccionalizador = "SECCIONALIZADOR"
	TypeSBC             = "SBC"
)

// Task states.
const (
	EstadoProgramado   = "PROGRAMADO"
	EstadoEjecutado    = "EJECUTADO"
	EstadoReprogramado = "REPROGRAMADO"
	EstadoSuspendido   = "SUSPENDIDO"
)

// NoData is the catch-all brand and model entry.
const NoData = "SIN DATOS"

// Types is the ordered list of equipment types.
var Types = []string{TypeInterruptor, TypeReconectador, TypeSeccionalizador, TypeSBC}

// LookupTypes are the equipment types whose zone and locality can be
// resolved from the UT identifier.
var LookupTypes = []string{TypeReconectador, TypeSeccionalizador, TypeSBC, TypeInterruptor}

// Obradores are the known depot locations.
var Obradores = []string{
	"CDSJ", "CDME", "CDGC", "CDLH", "CDMO", "CDMR",
	"ROWING_MR", "ROWING_ITU", "ROWING_TI", "BEPANOR", "SADE_ITU", "POSE",
}

// Estados is the ordered lifecycle status enumeration.
var Estados = []string{EstadoProgramado, EstadoEjecutado, EstadoReprogramado, EstadoSuspendido}

// Tareas is the task kind enumeration shown in the task select.
var Tareas = []string{"ENSAYO", "AJUSTE", "FUNCIÓN", "EVENTOS", "ACTUALIZAR"}

type brand struct {
	name   string
	models []string
}

// equipment preserves the brand order of each catalog key.
var equipment = map[string][]brand{
	TypeReconectador: {
		{"ABB", []string{"OVR3", "OVR15"}},
		{"ENTEC", []string{"ETR300-R-600"}},
		{"COOPER", []string{"FORM6"}},
		{"TAVRIDA", []string{"RC5_4"}},
		{NoData, []string{NoData}},
	},
	TypeSeccionalizador: {
		{"ABB", []string{"POL1", "POL2", "CHINO", "WiAutoLink"}},
		{"ENTEC", []string{"ETMFC610", "ETMFC101-N1"}},
		{"EFACEC", []string{"R650"}},
		{"SCHNEIDER", []string{"T200P"}},
		{NoData, []string{NoData}},
	},
	TypeInterruptor: {
		{"MERLIN GERIN", []string{"VIP 13", "VIP 201", "VIP 300LL"}},
		{"FANOX", []string{"SIA-C"}},
		{"WOODWARD", []string{"WIP1-1"}},
		{"SCHNEIDER", []string{"VIP 400", "MiCOM P116"}},
		{"ABB", []string{"VC"}},
		{NoData, []string{NoData}},
	},
}

// Zonas maps a zone code to its localities.
var Zonas = map[string][]string{
	"1CA": {"CAPITAL FEDERAL", "VICENTE LOPEZ"},
	"1MA": {"GRAL SAN MARTIN", "3 DE FEBRERO"},
	"1OL": {"SAN ISIDRO", "VICENTE LOPEZ"},
	"2LM": {"LA MATANZA"},
	"2ME": {"GRAL LAS HERAS", "MERLO", "MARCOS PAZ"},
	"2MO": {"HURLINGHAM", "MORON", "ITUZAINGO"},
	"3MI": {"JOSE C PAZ", "MALVINAS ARGENTINAS", "SAN MIGUEL"},
	"3MR": {"MORENO", "GRAL RODRIGUEZ", "JOSE C PAZ"},
	"3PI": {"ESCOBAR", "PILAR"},
	"3TI": {"SAN FERNANDO", "TIGRE"},
}

// ZoneCodes returns the zone codes sorted alphabetically.
func ZoneCodes() []string {
	codes := make([]string, 0, len(Zonas))
	for code := range Zonas {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Localities returns the localities of a zone, or nil for an unknown code.
func Localities(code string) []string {
	return Zonas[code]
}

// CatalogKey upper-cases the type and maps the SBC alias onto SECCIONALIZADOR.
func CatalogKey(tipo string) string {
	key := strings.ToUpper(strings.TrimSpace(tipo))
	if key == TypeSBC {
		return TypeSeccionalizador
	}
	return key
}

// Brands returns the brands available for an equipment type.
func Brands(tipo string) []string {
	entries := equipment[CatalogKey(tipo)]
	names := make([]string, len(entries))
	for i, b := range entries {
		names[i] = b.name
	}
	return names
}

// Models returns the models of a brand for an equipment type.
func Models(tipo, marca string) []string {
	for _, b := range equipment[CatalogKey(tipo)] {
		if b.name == marca {
			return slices.Clone(b.models)
		}
	}
	return nil
}

// Cascade is the option set of the dependent brand and model selects.
type Cascade struct {
	Brands []string
	Models []string
}

// Options resolves the brand and model options for a type and brand.
// An unknown brand yields no models.
func Options(tipo, marca string) Cascade {
	return Cascade{Brands: Brands(tipo), Models: Models(tipo, marca)}
}

// Pick returns current when it is one of options, otherwise the first
// option, or "" when there are none.
func Pick(options []string, current string) string {
	if current != "" && slices.Contains(options, current) {
		return current
	}
	if len(options) > 0 {
		return options[0]
	}
	return ""
}

// IsObrador reports whether v exactly matches a known depot location.
func IsObrador(v string) bool {
	return slices.Contains(Obradores, v)
}

// IsLookupType reports whether the zone lookup applies to the type.
func IsLookupType(tipo string) bool {
	return slices.Contains(LookupTypes, strings.ToUpper(strings.TrimSpace(tipo)))
}
