// Package docs holds the swagger document served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "EmergiLink maintainers"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Health"
                ],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/health": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Health"
                ],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/hospitals/nearby": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Directory"
                ],
                "summary": "Hospitals nearest first",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/hospitals/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Directory"
                ],
                "summary": "Hospital detail",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/news": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Directory"
                ],
                "summary": "News feed ordered by priority then recency",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/news/categories": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Directory"
                ],
                "summary": "News categories",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/news/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Directory"
                ],
                "summary": "News item",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/ambulances/nearby": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Ambulances"
                ],
                "summary": "Available ambulances by distance",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/ambulances/book": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Ambulances"
                ],
                "summary": "Book an ambulance",
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    },
                    "422": {
                        "description": "Unprocessable Entity"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/api/bookings/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Ambulances"
                ],
                "summary": "Booking detail",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/bookings/{id}/cancel": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Ambulances"
                ],
                "summary": "Cancel a booking",
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    },
                    "422": {
                        "description": "Unprocessable Entity"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/api/bookings/{id}/complete": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Ambulances"
                ],
                "summary": "Complete a booking",
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    },
                    "422": {
                        "description": "Unprocessable Entity"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/api/emergency/sos": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Emergency"
                ],
                "summary": "Trigger an SOS",
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    },
                    "422": {
                        "description": "Unprocessable Entity"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/api/emergency/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Emergency"
                ],
                "summary": "SOS event detail",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/emergency/{id}/resolve": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Emergency"
                ],
                "summary": "Resolve an SOS event",
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    },
                    "422": {
                        "description": "Unprocessable Entity"
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/api/emergency/history/{user_id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Emergency"
                ],
                "summary": "SOS history of a user",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/alerts/active": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Alerts"
                ],
                "summary": "Active alerts, newest first",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/alerts/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Alerts"
                ],
                "summary": "Alert detail",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/alerts": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Alerts"
                ],
                "summary": "Publish or replace an alert",
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    },
                    "422": {
                        "description": "Unprocessable Entity"
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "403": {
                        "description": "Forbidden"
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/users/{id}/emergency-contacts": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Contacts"
                ],
                "summary": "List emergency contacts",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "post": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Contacts"
                ],
                "summary": "Add an emergency contact",
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "422": {
                        "description": "Unprocessable Entity"
                    }
                }
            }
        },
        "/api/users/{id}/emergency-contacts/{contact_id}": {
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Contacts"
                ],
                "summary": "Delete an emergency contact",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/navigation/safe-route": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Navigation"
                ],
                "summary": "Straight-line route with alert zones",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ws/alerts": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Alerts"
                ],
                "summary": "Websocket live feed",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "EmergiLink API",
	Description:      "Emergency response backend: ambulance booking, SOS dispatch with contact fan-out, disaster alerts, hospital and news directory, live websocket feed.",
	InfoInstanceName: "emergilink",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
