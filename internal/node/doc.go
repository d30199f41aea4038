// Package node defines the vertex record of the abstract reachability graph.
package node
