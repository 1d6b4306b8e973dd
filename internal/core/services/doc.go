// Package services implements the engine's driving ports: the content
// service owning the document lifecycle and the query service running
// one user turn from scope check to grounded answer. Services depend
// only on the driven ports; adapters are injected at wiring time.
package services
