// Package config provides configuration parsing for the dnd server.
//
// The configuration is stored in dnd.json, or in dnd.toml with the same keys.
// Every field is optional; missing values are filled from defaults. Watch
// reports edits to a configuration file so a running server can pick up new
// drag settings.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "host": "localhost",
//	    "port": 3100,
//	    "path": "/dnd",
//	    "readTimeout": "60s",
//	    "writeTimeout": "10s",
//	    "eventRate": 200,
//	    "eventBurst": 100
//	  },
//	  "drag": {
//	    "payloadFormat": "Text",
//	    "effectAllowed": "move",
//	    "draggingClass": "dragging",
//	    "draggingSourceClass": "dragging-source"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "path": "/metrics",
//	    "namespace": "dnd"
//	  },
//	  "tracing": {
//	    "tracerName": "dnd"
//	  }
//	}
package config
