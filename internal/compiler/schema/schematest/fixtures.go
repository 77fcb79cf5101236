// Package schematest provides service document fixtures for tests.
package schematest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shapec-dev/shapec/internal/compiler/schema"
)

// ThingsService is a small service exercising every shape kind, a record
// used in both request and response roles, a self-referential record, a
// paginator, a waiter and a resource document.
const ThingsService = `{
  "metadata": {
    "apiVersion": "2020-01-01",
    "endpointPrefix": "things",
    "protocol": "json",
    "serviceFullName": "Things Service",
    "serviceId": "Things",
    "signatureVersion": "v4",
    "uid": "things-2020-01-01"
  },
  "operations": {
    "DescribeThing": {
      "name": "DescribeThing",
      "input": {"shape": "DescribeThingRequest"},
      "output": {"shape": "DescribeThingOutput"}
    },
    "ListThings": {
      "name": "ListThings",
      "input": {"shape": "ListThingsRequest"},
      "output": {"shape": "ListThingsResult"}
    },
    "PutThing": {
      "name": "PutThing",
      "input": {"shape": "Thing"},
      "output": {"shape": "Thing"}
    },
    "GetBlob": {
      "name": "GetBlob",
      "input": {"shape": "GetBlobRequest"},
      "output": {"shape": "GetBlobOutput"}
    },
    "CreateTree": {
      "name": "CreateTree",
      "input": {"shape": "CreateTreeRequest"}
    },
    "DeleteThings": {
      "name": "DeleteThings",
      "input": {"shape": "DeleteThingsRequest"}
    },
    "Ping": {
      "name": "Ping"
    }
  },
  "shapes": {
    "DescribeThingRequest": {
      "type": "structure",
      "required": ["Id"],
      "members": {
        "Id": {"shape": "String"}
      }
    },
    "DescribeThingOutput": {
      "type": "structure",
      "members": {
        "Name": {"shape": "String"},
        "Tags": {"shape": "TagList"}
      }
    },
    "ListThingsRequest": {
      "type": "structure",
      "members": {
        "Filter": {"shape": "FilterList"},
        "NextToken": {"shape": "String"},
        "MaxResults": {"shape": "Integer"}
      }
    },
    "ListThingsResult": {
      "type": "structure",
      "members": {
        "Things": {"shape": "ThingList"},
        "NextToken": {"shape": "String"}
      }
    },
    "Thing": {
      "type": "structure",
      "required": ["Name"],
      "members": {
        "Name": {"shape": "String"},
        "State": {"shape": "ThingState"},
        "Attributes": {"shape": "AttributeMap"},
        "Extra": {"shape": "Empty"}
      }
    },
    "GetBlobRequest": {
      "type": "structure",
      "required": ["Key"],
      "members": {
        "Key": {"shape": "String"},
        "Since": {"shape": "Timestamp"},
        "Payload": {"shape": "Blob"}
      }
    },
    "GetBlobOutput": {
      "type": "structure",
      "members": {
        "Body": {"shape": "StreamingBlob"},
        "LastModified": {"shape": "Timestamp"},
        "Size": {"shape": "Long"},
        "Ratio": {"shape": "Double"},
        "Ready": {"shape": "Boolean"},
        "Mystery": {"shape": "Mystery"}
      }
    },
    "CreateTreeRequest": {
      "type": "structure",
      "required": ["Root"],
      "members": {
        "Root": {"shape": "Node"}
      }
    },
    "DeleteThingsRequest": {
      "type": "structure",
      "required": ["Names"],
      "members": {
        "Names": {"shape": "NameList"},
        "Force": {"shape": "Boolean"}
      }
    },
    "Node": {
      "type": "structure",
      "members": {
        "Value": {"shape": "String"},
        "Children": {"shape": "NodeList"}
      }
    },
    "NodeList": {"type": "list", "member": {"shape": "Node"}},
    "TagList": {"type": "list", "member": {"shape": "String"}},
    "ThingList": {"type": "list", "member": {"shape": "Thing"}},
    "NameList": {"type": "list", "member": {"shape": "String"}},
    "FilterList": {"type": "list", "member": {"shape": "String"}},
    "AttributeMap": {"type": "map", "key": {"shape": "String"}, "value": {"shape": "Integer"}},
    "Empty": {"type": "structure", "members": {}},
    "ThingState": {"type": "string", "enum": ["pending", "active", "deleted"]},
    "Mystery": {"type": "mystery"},
    "String": {"type": "string"},
    "Integer": {"type": "integer"},
    "Long": {"type": "long"},
    "Double": {"type": "double"},
    "Boolean": {"type": "boolean"},
    "Timestamp": {"type": "timestamp"},
    "Blob": {"type": "blob"},
    "StreamingBlob": {"type": "blob", "streaming": true}
  }
}`

// ThingsPaginators declares a paginator for ListThings.
const ThingsPaginators = `{
  "pagination": {
    "ListThings": {
      "input_token": "NextToken",
      "output_token": "NextToken",
      "limit_key": "MaxResults",
      "result_key": "Things"
    }
  }
}`

// ThingsWaiters declares a waiter backed by DescribeThing.
const ThingsWaiters = `{
  "version": 2,
  "waiters": {
    "ThingExists": {
      "operation": "DescribeThing",
      "delay": 5,
      "maxAttempts": 20
    }
  }
}`

// ThingsResources declares a service resource with one resource class.
const ThingsResources = `{
  "service": {
    "actions": {
      "PutThing": {
        "request": {"operation": "PutThing"},
        "resource": {
          "type": "Thing",
          "identifiers": [{"target": "Name", "source": "requestParameter", "path": "Name"}]
        }
      }
    },
    "has": {
      "Thing": {
        "resource": {
          "type": "Thing",
          "identifiers": [{"target": "Name", "source": "input"}]
        }
      }
    },
    "hasMany": {
      "Things": {
        "request": {"operation": "ListThings"},
        "resource": {
          "type": "Thing",
          "identifiers": [{"target": "Name", "source": "response", "path": "Things[].Name"}],
          "path": "Things[]"
        }
      }
    }
  },
  "resources": {
    "Thing": {
      "identifiers": [{"name": "Name"}],
      "shape": "Thing",
      "load": {
        "request": {
          "operation": "DescribeThing",
          "params": [{"target": "Id", "source": "identifier", "name": "Name"}]
        },
        "path": "$"
      },
      "actions": {
        "Describe": {
          "request": {
            "operation": "DescribeThing",
            "params": [{"target": "Id", "source": "identifier", "name": "Name"}]
          }
        },
        "Put": {
          "request": {
            "operation": "PutThing",
            "params": [{"target": "Name", "source": "identifier", "name": "Name"}]
          }
        }
      },
      "batchActions": {
        "Delete": {
          "request": {
            "operation": "DeleteThings",
            "params": [{"target": "Names[]", "source": "identifier", "name": "Name"}]
          }
        }
      },
      "waiters": {
        "Exists": {
          "waiterName": "ThingExists",
          "params": [{"target": "Id", "source": "identifier", "name": "Name"}]
        }
      }
    }
  }
}`

// Things returns the full fixture documents.
func Things() *schema.Documents {
	return &schema.Documents{
		Service:    []byte(ThingsService),
		Paginators: []byte(ThingsPaginators),
		Waiters:    []byte(ThingsWaiters),
		Resources:  []byte(ThingsResources),
	}
}

// Parse parses documents or fails the test.
func Parse(t testing.TB, name string, docs *schema.Documents) *schema.ServiceModel {
	t.Helper()
	model, err := schema.Parse(name, docs)
	require.NoError(t, err)
	return model
}

// Service parses a single service-2.json document or fails the test.
func Service(t testing.TB, name, service string) *schema.ServiceModel {
	t.Helper()
	return Parse(t, name, &schema.Documents{Service: []byte(service)})
}

// WriteDir writes docs into dir using the standard file names.
func WriteDir(t testing.TB, dir string, docs *schema.Documents) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))

	files := map[string][]byte{
		schema.ServiceFile:    docs.Service,
		schema.PaginatorsFile: docs.Paginators,
		schema.WaitersFile:    docs.Waiters,
		schema.ResourcesFile:  docs.Resources,
	}
	for name, data := range files {
		if data == nil {
			continue
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
}
