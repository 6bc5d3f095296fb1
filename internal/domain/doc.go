// Package domain parses NOAA National Data Buoy Center (NDBC) realtime
// standard meteorological reports into typed, columnar station tables.
//
// # Data Source
//
// Realtime reports are plain text files published per station at
// https://www.ndbc.noaa.gov/data/realtime2/<station>.txt and cover roughly the
// last 45 days of observations, newest first.
//
// # Report Conventions
//
// Header block:
//
//	#YY  MM DD hh mm WDIR WSPD GST  WVHT   DPD   APD MWD   PRES  ATMP  WTMP  DEWP  VIS PTDY  TIDE
//	#yr  mo dy hr mn degT m/s  m/s     m   sec   sec degT   hPa  degC  degC  degC  nmi  hPa    ft
//
//	The first comment line whose leading token is YY (or YYYY) names the
//	columns. The line directly beneath it carries units and is skipped. Column
//	alignment is not guaranteed, so positions are resolved from the header
//	tokens rather than fixed offsets (see [LocateHeader]).
//
// Time columns:
//
//	YY MM DD hh mm, always UTC. Two-digit years are 2000+YY; four-digit years
//	are taken as-is. Month and minute share the name "mm" once lowercased, so
//	time columns are matched on their original case.
//
// Field columns:
//
//	wdir wspd gst wvht dpd apd mwd pres atmp wtmp dewp vis ptdy tide.
//	Header tokens are lowercased before matching. The first occurrence of a
//	duplicated column name wins.
//
// Missing values:
//
//	"MM" is the NDBC sentinel for a missing observation. "NaN" is treated the
//	same way, as is any token that fails to parse as a number. A single bad
//	token never discards the row (see [DecodeScalar]).
//
// # Output Schema
//
// Every station table carries the same 15 columns in a fixed order: time
// followed by the fourteen fields, regardless of which fields the source
// report contained. Unobserved fields are all-null columns (see [AssembleTable]).
package domain
