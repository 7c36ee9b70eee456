// Package request builds WFS query URIs for the supported protocol versions
// and validates user-supplied connection strings against them.
//
// Two grammars exist. Versions 1.0, 1.0.0 and 1.1.0 share the 1.1 grammar,
// where the API key is a path segment:
//
//	http://wfs.data.linz.govt.nz/<key>/wfs?service=WFS&version=1.1.0&request=GetCapabilities
//
// Versions 2.0 and 2.0.0 use the services root with a key matrix parameter:
//
//	http://data.linz.govt.nz/services;key=<key>/wfs?service=WFS&request=GetCapabilities
//
// A Builder is obtained from New and dispatches on the grammar; the two
// grammars are not interchangeable for validation.
package request
