// Package service provides base functionality and lifecycle management
// for the long-running pieces of the travelstreams platform. It includes
// health monitoring, ordered startup and shutdown, and metric reporting.
//
// Services embed BaseService for status tracking and periodic health
// checks, and are composed by Manager which starts them in registration
// order and stops them in reverse.
package service
