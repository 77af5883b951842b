package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/drk-nordrhein/selbstauskunft/models"
	"github.com/julienschmidt/httprouter"
	"github.com/spf13/viper"
)

func hello(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, viper.GetString("service_name"))
}

func info(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	info := models.Info{
		Name:          viper.GetString("service_name"),
		Version:       viper.GetString("app_version"),
		SchemaVersion: questions.Version,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}
