// Package building models the building objects exchanged by ADEPT services:
// a named building, the sensors mounted in it and a time-indexed frame of
// their readings. It also implements the JSON wire codec, in which every
// frame travels as a JSON string of epoch-millisecond keyed columns.
package building
