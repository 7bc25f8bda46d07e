// Package ports ships minimal in-memory reference implementations of the
// collaborator interfaces declared in package tcpcore (PacketIO,
// RetransmitQueue, WriteQueue, ReadQueue, Timer, RTTEstimator, Signals).
// They exist to make the engine runnable end-to-end in tests and on small
// embedded targets; a production embedding backed by real sockets, DMA
// rings or hardware timers would replace them one at a time, since each
// port is an independently satisfiable interface.
package ports
