// Package logtail reads the mutation log written by the logger plugin.
//
// Read returns the last N lines of the file using a ring buffer, so memory
// stays O(N) regardless of file size. Parse groups lines into entries, one
// per committed mutation or dispatched action, and Filter narrows them by
// kind or type ("cart/" matches every type in the cart namespace). Follow
// polls the file for appended lines, which backs "statekit log --follow".
//
// Expected header format, as written by the logger plugin:
//
//	mutation cart/pushProductToCart @ 10:04:05.120 prev=... mutation=... next=...
//	action cart/checkout @ 10:04:06.002
//	  action:     {"type":"cart/checkout","payload":[...]}
//	  state:      ...
//
// Missing files are not errors: Read returns no lines and Follow waits for
// the file to appear.
package logtail
