// Package objstore is a typed client for the object storage service the
// pipeline uploads print artifacts to. Only the put/exists subset the
// pipeline needs is modeled.
package objstore
